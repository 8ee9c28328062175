package grid

// helper columns modelled on a trip list
func sampleColumns() []Column {
	return []Column{
		{Key: "id", Label: "ID", Type: TypeNumber, Sortable: true, Filterable: true, FilterMode: FilterServer, Order: 0, Width: 6},
		{Key: "status", Label: "Status", Type: TypeString, Sortable: true, Filterable: true, FilterMode: FilterLocal, Order: 1, Width: 10},
		{Key: "departurePoint", Label: "Departure", Type: TypeString, Filterable: true, Order: 2, Width: 18},
		{Key: "arrivalPoint", Label: "Arrival", Type: TypeString, SubRow: true, Order: 3, Width: 18},
		{Key: "departedAt", Label: "Departed", Type: TypeDate, Sortable: true, SubRow: true, Order: 4, Width: 12},
	}
}

// helper rows keyed by "id"
func sampleRows() []Row {
	return []Row{
		{"id": 3, "status": "Active", "departurePoint": "Rotterdam", "arrivalPoint": "Hamburg", "departedAt": "2024-03-02"},
		{"id": 1, "status": "Closed", "departurePoint": "Antwerp", "arrivalPoint": "Lyon", "departedAt": "2024-01-15"},
		{"id": 2, "status": "active", "departurePoint": "Gdansk", "arrivalPoint": "Vienna", "departedAt": "2024-02-20"},
	}
}

func newSampleGrid(opts ...Option) *Grid {
	g := New(sampleColumns(), append([]Option{WithKeyColumn("id")}, opts...)...)
	g.SetRows(sampleRows())
	return g
}

func visibleIDs(g *Grid) []any {
	var ids []any
	for _, r := range g.Visible() {
		ids = append(ids, r.Row["id"])
	}
	return ids
}
