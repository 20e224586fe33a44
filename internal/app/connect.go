package app

import (
	"context"
	"fmt"
	"maps"
	"os"
	"time"

	"github.com/specialistvlad/gridetl/internal/compute"
	"github.com/specialistvlad/gridetl/internal/config"
	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/pipeline"
	"github.com/specialistvlad/gridetl/internal/warehouse"
)

const defaultLivyPollInterval = 5 * time.Second

// definition maps the configuration model onto the pipeline's static shape.
func definition(m *config.Model) pipeline.Definition {
	t := warehouse.Table{
		Name:            m.Table.Name,
		PartitionColumn: m.Table.PartitionColumn,
		DistKey:         m.Table.DistKey,
		SortKeys:        m.Table.SortKeys,
	}
	for _, c := range m.Table.Columns {
		t.Columns = append(t.Columns, warehouse.Column{Name: c.Name, Type: c.Type})
	}
	return pipeline.Definition{
		ID:    m.Pipeline.ID,
		Table: t,
		Transform: pipeline.Transform{
			Name:        m.Transform.Name,
			Application: m.Transform.Application,
		},
	}
}

// connect opens every backend that was not injected.
func (a *App) connect(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	if a.warehouse == nil {
		conn := a.model.WarehouseConnection()
		cfg, err := warehouseConfig(conn)
		if err != nil {
			return err
		}
		store, err := warehouse.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to warehouse %q: %w", conn.Name, err)
		}
		a.warehouse = store
		a.closers = append(a.closers, store.Close)
		logger.Info("Warehouse connected.", "connection", conn.Name, "type", conn.Type)
	}

	if a.submitter == nil {
		conn := a.model.ComputeConnection()
		sub, closer, err := newSubmitter(conn, a.model.Transform)
		if err != nil {
			return fmt.Errorf("failed to configure compute connection %q: %w", conn.Name, err)
		}
		a.submitter = sub
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
		logger.Debug("Compute engine configured.", "connection", conn.Name, "type", conn.Type)
	}
	return nil
}

func warehouseConfig(conn *config.Connection) (warehouse.Config, error) {
	dsn := conn.DSN
	if dsn == "" && conn.DSNEnv != "" {
		dsn = os.Getenv(conn.DSNEnv)
	}
	if dsn == "" {
		return warehouse.Config{}, fmt.Errorf("warehouse connection %q has no DSN: set dsn or the %s environment variable", conn.Name, conn.DSNEnv)
	}

	cfg := warehouse.DefaultConfig(dsn)
	if conn.PingTimeout > 0 {
		cfg.PingTimeout = conn.PingTimeout
	}
	if conn.MaxOpenConns > 0 {
		cfg.MaxOpenConns = conn.MaxOpenConns
		cfg.MaxIdleConns = min(cfg.MaxIdleConns, conn.MaxOpenConns)
	}
	return cfg, nil
}

func newSubmitter(conn *config.Connection, tr *config.Transform) (compute.Submitter, func() error, error) {
	conf := make(map[string]string, len(conn.Conf)+len(tr.Conf))
	maps.Copy(conf, conn.Conf)
	maps.Copy(conf, tr.Conf)

	switch conn.Type {
	case config.ConnSpark:
		s, err := compute.NewSparkSubmitter(compute.SparkConfig{
			Binary:          conn.Binary,
			Master:          conn.Master,
			DeployMode:      conn.DeployMode,
			DriverClassPath: tr.DriverClassPath,
			Conf:            conf,
		}, nil)
		return s, nil, err
	case config.ConnLivy:
		poll := conn.PollInterval
		if poll == 0 {
			poll = defaultLivyPollInterval
		}
		l, err := compute.NewLivySubmitter(compute.LivyConfig{
			URL:             conn.URL,
			PollInterval:    poll,
			RequestTimeout:  conn.RequestTimeout,
			DriverClassPath: tr.DriverClassPath,
			Conf:            conf,
		})
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported compute type %q", conn.Type)
}

// Close releases every backend the app opened.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	if err := a.closeHealthCheckServer(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
