package hcl

import "github.com/hashicorp/hcl/v2"

// variablesRoot decodes the variable blocks. Everything else is left in Remain
// and decoded once the variables are known.
type variablesRoot struct {
	Variables []*variableBlock `hcl:"variable,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type variableBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

type pipelineRoot struct {
	Pipelines   []*pipelineBlock   `hcl:"pipeline,block"`
	Connections []*connectionBlock `hcl:"connection,block"`
	Tables      []*tableBlock      `hcl:"table,block"`
	Transforms  []*transformBlock  `hcl:"transform,block"`
}

type pipelineBlock struct {
	ID          string `hcl:"id,label"`
	Description string `hcl:"description,optional"`
	Owner       string `hcl:"owner,optional"`
	StartDate   string `hcl:"start_date,optional"`
	Schedule    string `hcl:"schedule,optional"`
	Catchup     bool   `hcl:"catchup,optional"`
	Retries     int    `hcl:"retries,optional"`
	Workers     int    `hcl:"workers,optional"`
}

type connectionBlock struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`

	DSN          string `hcl:"dsn,optional"`
	DSNEnv       string `hcl:"dsn_env,optional"`
	PingTimeout  string `hcl:"ping_timeout,optional"`
	MaxOpenConns int    `hcl:"max_open_conns,optional"`

	Binary     string `hcl:"binary,optional"`
	Master     string `hcl:"master,optional"`
	DeployMode string `hcl:"deploy_mode,optional"`

	URL            string `hcl:"url,optional"`
	PollInterval   string `hcl:"poll_interval,optional"`
	RequestTimeout string `hcl:"request_timeout,optional"`

	Conf map[string]string `hcl:"conf,optional"`
}

type tableBlock struct {
	Name            string         `hcl:"name,label"`
	Connection      string         `hcl:"connection"`
	PartitionColumn string         `hcl:"partition_column"`
	DistKey         string         `hcl:"dist_key,optional"`
	SortKeys        []string       `hcl:"sort_keys,optional"`
	Columns         []*columnBlock `hcl:"column,block"`
}

type columnBlock struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`
}

type transformBlock struct {
	Name            string            `hcl:"name,label"`
	Connection      string            `hcl:"connection"`
	Application     string            `hcl:"application"`
	DriverClassPath string            `hcl:"driver_class_path,optional"`
	Conf            map[string]string `hcl:"conf,optional"`
}
