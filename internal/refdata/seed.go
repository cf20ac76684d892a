package refdata

// DefaultSuppliers is the bootstrap supplier directory used when no
// external master data source is configured.
func DefaultSuppliers() []Supplier {
	return []Supplier{
		{ID: "SUP-001", Name: "Golden Harvest Distribution", Code: "GHD", Currency: "USD", PaymentTerms: "NET30", ContactEmail: "orders@goldenharvest.example"},
		{ID: "SUP-002", Name: "Pacific Fresh Produce Co", Code: "PFP", Currency: "USD", PaymentTerms: "NET15", ContactEmail: "sales@pacificfresh.example"},
		{ID: "SUP-003", Name: "Metro Beverage Supply", Code: "MBS", Currency: "USD", PaymentTerms: "NET30", ContactEmail: "accounts@metrobev.example"},
		{ID: "SUP-004", Name: "Sunrise Household Goods", Code: "SHG", Currency: "USD", PaymentTerms: "NET45", ContactEmail: "support@sunrisehg.example"},
	}
}

// DefaultWarehouses is the bootstrap warehouse directory.
func DefaultWarehouses() []Warehouse {
	return []Warehouse{
		{ID: "WH-001", Name: "Main Warehouse", Location: "Downtown DC"},
		{ID: "WH-002", Name: "North Branch Store", Location: "North District"},
		{ID: "WH-003", Name: "Riverside Store", Location: "Riverside Mall"},
	}
}
