package domain

// WarehouseMetadata is what the harness tracks about a SQL warehouse it created or
// re-attached to. State carries the product's own status string, e.g. RUNNING.
type WarehouseMetadata struct {
	ID    string
	Name  string
	State string
	Size  string

	AutoStopMins   int
	MinNumClusters int
	MaxNumClusters int
}
