package refdata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectoryLookup(t *testing.T) {
	dir := NewDirectory(DefaultSuppliers(), DefaultWarehouses())

	s, err := dir.Supplier("SUP-001")
	require.NoError(t, err)
	require.Equal(t, "Golden Harvest Distribution", s.Name)

	_, err = dir.Supplier("SUP-404")
	require.ErrorIs(t, err, ErrNotFound)

	w, err := dir.Warehouse("WH-002")
	require.NoError(t, err)
	require.Equal(t, "North Branch Store", w.Name)

	_, err = dir.Warehouse("WH-404")
	require.ErrorIs(t, err, ErrNotFound)

	require.Len(t, dir.Suppliers(), len(DefaultSuppliers()))
	require.Len(t, dir.Warehouses(), len(DefaultWarehouses()))
}
