package config

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Progress merge modes
const (
	MergeModeOverwrite  = "overwrite"
	MergeModeAccumulate = "accumulate"
)
