// Package refdata holds the read-only supplier and warehouse reference
// directory. The hosting shell supplies the records; the workflow only
// ever reads them to stamp denormalized fields at document creation.
package refdata

import "errors"

// Supplier describes a goods supplier.
type Supplier struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Currency     string `json:"currency"`
	PaymentTerms string `json:"paymentTerms"`
	ContactEmail string `json:"contactEmail"`
}

// Warehouse describes a storage location.
type Warehouse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ErrNotFound indicates a missing directory entry.
var ErrNotFound = errors.New("refdata: not found")

// Directory is an immutable id lookup over suppliers and warehouses.
type Directory struct {
	suppliers  map[string]Supplier
	warehouses map[string]Warehouse
}

// NewDirectory indexes the given records by id.
func NewDirectory(suppliers []Supplier, warehouses []Warehouse) *Directory {
	d := &Directory{
		suppliers:  make(map[string]Supplier, len(suppliers)),
		warehouses: make(map[string]Warehouse, len(warehouses)),
	}
	for _, s := range suppliers {
		d.suppliers[s.ID] = s
	}
	for _, w := range warehouses {
		d.warehouses[w.ID] = w
	}
	return d
}

// Supplier looks up a supplier by id.
func (d *Directory) Supplier(id string) (Supplier, error) {
	s, ok := d.suppliers[id]
	if !ok {
		return Supplier{}, ErrNotFound
	}
	return s, nil
}

// Warehouse looks up a warehouse by id.
func (d *Directory) Warehouse(id string) (Warehouse, error) {
	w, ok := d.warehouses[id]
	if !ok {
		return Warehouse{}, ErrNotFound
	}
	return w, nil
}

// Suppliers returns all suppliers.
func (d *Directory) Suppliers() []Supplier {
	out := make([]Supplier, 0, len(d.suppliers))
	for _, s := range d.suppliers {
		out = append(out, s)
	}
	return out
}

// Warehouses returns all warehouses.
func (d *Directory) Warehouses() []Warehouse {
	out := make([]Warehouse, 0, len(d.warehouses))
	for _, w := range d.warehouses {
		out = append(out, w)
	}
	return out
}
