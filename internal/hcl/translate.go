package hcl

import (
	"fmt"
	"time"

	"github.com/specialistvlad/gridetl/internal/config"
)

const dateLayout = "2006-01-02"

// translate converts the decoded HCL blocks into the agnostic model.
func translate(root *pipelineRoot, vars map[string]string) (*config.Model, error) {
	if len(root.Pipelines) != 1 {
		return nil, fmt.Errorf("expected exactly one pipeline block, found %d", len(root.Pipelines))
	}
	if len(root.Tables) != 1 {
		return nil, fmt.Errorf("expected exactly one table block, found %d", len(root.Tables))
	}
	if len(root.Transforms) != 1 {
		return nil, fmt.Errorf("expected exactly one transform block, found %d", len(root.Transforms))
	}

	pipeline, err := translatePipeline(root.Pipelines[0])
	if err != nil {
		return nil, err
	}

	model := &config.Model{
		Pipeline:    pipeline,
		Variables:   vars,
		Connections: make(map[string]*config.Connection, len(root.Connections)),
		Table:       translateTable(root.Tables[0]),
		Transform:   translateTransform(root.Transforms[0]),
	}

	for _, c := range root.Connections {
		if _, dup := model.Connections[c.Name]; dup {
			return nil, fmt.Errorf("connection %q is declared more than once", c.Name)
		}
		conn, err := translateConnection(c)
		if err != nil {
			return nil, err
		}
		model.Connections[c.Name] = conn
	}
	return model, nil
}

func translatePipeline(b *pipelineBlock) (*config.Pipeline, error) {
	p := &config.Pipeline{
		ID:          b.ID,
		Description: b.Description,
		Owner:       b.Owner,
		Schedule:    b.Schedule,
		Catchup:     b.Catchup,
		Retries:     b.Retries,
		Workers:     b.Workers,
	}
	if p.Schedule == "" {
		p.Schedule = config.DefaultSchedule
	}
	if p.Workers == 0 {
		p.Workers = 1
	}
	if b.StartDate != "" {
		t, err := time.ParseInLocation(dateLayout, b.StartDate, time.Local)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: invalid start_date %q, expected YYYY-MM-DD", b.ID, b.StartDate)
		}
		p.StartDate = t
	}
	return p, nil
}

func translateConnection(b *connectionBlock) (*config.Connection, error) {
	c := &config.Connection{
		Name:         b.Name,
		Type:         b.Type,
		DSN:          b.DSN,
		DSNEnv:       b.DSNEnv,
		MaxOpenConns: b.MaxOpenConns,
		Binary:       b.Binary,
		Master:       b.Master,
		DeployMode:   b.DeployMode,
		URL:          b.URL,
		Conf:         b.Conf,
	}

	var err error
	if c.PingTimeout, err = parseDuration(b.Name, "ping_timeout", b.PingTimeout); err != nil {
		return nil, err
	}
	if c.PollInterval, err = parseDuration(b.Name, "poll_interval", b.PollInterval); err != nil {
		return nil, err
	}
	if c.RequestTimeout, err = parseDuration(b.Name, "request_timeout", b.RequestTimeout); err != nil {
		return nil, err
	}
	return c, nil
}

func parseDuration(conn, attr, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("connection %q: invalid %s %q: %w", conn, attr, s, err)
	}
	return d, nil
}

func translateTable(b *tableBlock) *config.Table {
	t := &config.Table{
		Name:            b.Name,
		Connection:      b.Connection,
		PartitionColumn: b.PartitionColumn,
		DistKey:         b.DistKey,
		SortKeys:        b.SortKeys,
	}
	for _, c := range b.Columns {
		t.Columns = append(t.Columns, config.Column{Name: c.Name, Type: c.Type})
	}
	return t
}

func translateTransform(b *transformBlock) *config.Transform {
	return &config.Transform{
		Name:            b.Name,
		Connection:      b.Connection,
		Application:     b.Application,
		DriverClassPath: b.DriverClassPath,
		Conf:            b.Conf,
	}
}
