package config

import "time"

// Connection types.
const (
	ConnRedshift = "redshift"
	ConnPostgres = "postgres"
	ConnSpark    = "spark"
	ConnLivy     = "livy"
)

// DefaultSchedule is used when a pipeline declares none.
const DefaultSchedule = "@daily"

// Model is the unified, format-agnostic representation of a pipeline file.
type Model struct {
	Pipeline    *Pipeline
	Variables   map[string]string
	Connections map[string]*Connection
	Table       *Table
	Transform   *Transform
}

// Pipeline holds the pipeline metadata and its trigger policy.
type Pipeline struct {
	ID          string
	Description string
	Owner       string
	// StartDate is zero when unset. Scheduled ticks before it are ignored.
	StartDate time.Time
	Schedule  string
	Catchup   bool
	Retries   int
	Workers   int
}

// Connection is a named endpoint of either the warehouse or the compute engine.
// Only the fields relevant to Type are meaningful.
type Connection struct {
	Name string
	Type string

	// Warehouse.
	DSN          string
	DSNEnv       string
	PingTimeout  time.Duration
	MaxOpenConns int

	// spark-submit.
	Binary     string
	Master     string
	DeployMode string

	// Livy.
	URL            string
	PollInterval   time.Duration
	RequestTimeout time.Duration

	Conf map[string]string
}

// IsWarehouse reports whether the connection points at the warehouse.
func (c *Connection) IsWarehouse() bool {
	return c.Type == ConnRedshift || c.Type == ConnPostgres
}

// IsCompute reports whether the connection points at a compute engine.
func (c *Connection) IsCompute() bool {
	return c.Type == ConnSpark || c.Type == ConnLivy
}

// Table is the target table of the pipeline.
type Table struct {
	Name            string
	Connection      string
	Columns         []Column
	PartitionColumn string
	DistKey         string
	SortKeys        []string
}

type Column struct {
	Name string
	Type string
}

// Transform is the compute job that reloads one partition.
type Transform struct {
	Name            string
	Connection      string
	Application     string
	DriverClassPath string
	Conf            map[string]string
}
