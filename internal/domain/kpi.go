package domain

// KPIEntry is one scalar in the dashboard rollup.
// Corresponds to kpi_entries table in PostgreSQL (key/value for
// flexibility); fully rebuilt each run.
type KPIEntry struct {
	Name  string
	Value string
}
