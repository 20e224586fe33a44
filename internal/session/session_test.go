package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/executor"
	"github.com/specialistvlad/gridetl/internal/pipeline"
	"github.com/specialistvlad/gridetl/internal/testutil"
	"github.com/specialistvlad/gridetl/internal/warehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func definition() pipeline.Definition {
	return pipeline.Definition{
		ID: "etl_covid",
		Table: warehouse.Table{
			Name:            "covid_colombia",
			Columns:         []warehouse.Column{{Name: "id_de_caso", Type: "INT"}, {Name: "process_date", Type: "VARCHAR(10)"}},
			PartitionColumn: "process_date",
		},
		Transform: pipeline.Transform{Name: "spark_etl_covid", Application: "/opt/ETL_Covid.py"},
	}
}

func newFactory(wh *testutil.FakeWarehouse, sub *testutil.FakeSubmitter, opts ...Option) *Factory {
	return NewFactory(definition(), pipeline.Deps{
		Warehouse: wh,
		Submitter: sub,
		Clock:     testutil.FixedClock(time.Date(2024, 3, 2, 0, 5, 0, 0, time.Local)),
	}, opts...)
}

func TestFactory_RunSucceeds(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))
	wh := testutil.NewFakeWarehouse()
	f := newFactory(wh, &testutil.FakeSubmitter{Warehouse: wh, Table: "covid_colombia", RowsPerRun: 3},
		WithIDGenerator(func() string { return "run-42" }))

	res, err := f.Run(ctx, Trigger{Time: time.Now(), Source: "manual"})
	require.NoError(t, err)
	assert.Equal(t, "run-42", res.RunID)
	assert.Equal(t, executor.RunSucceeded, res.Status)
	assert.Equal(t, 3, wh.Rows("covid_colombia", "2024-03-02"))

	logs := buf.String()
	assert.Contains(t, logs, "Node summary.")
	assert.Contains(t, logs, "node_id=spark_etl_covid status=succeeded")
	assert.Contains(t, logs, "run_id=run-42")
}

func TestFactory_SessionsAreIsolated(t *testing.T) {
	wh := testutil.NewFakeWarehouse()
	f := newFactory(wh, &testutil.FakeSubmitter{})

	first, err := f.NewSession(context.Background(), Trigger{Conf: map[string]any{"process_date": "2024-03-01"}})
	require.NoError(t, err)
	second, err := f.NewSession(context.Background(), Trigger{})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = first.Run(context.Background())
	require.NoError(t, err)
	_, err = second.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"process_date": "2024-03-01"}, first.Context().Snapshot())
	assert.Equal(t, map[string]string{"process_date": "2024-03-02"}, second.Context().Snapshot())
}

func TestFactory_RunFailure(t *testing.T) {
	wh := testutil.NewFakeWarehouse()
	wh.DeleteErr = errors.New("lock timeout")
	f := newFactory(wh, &testutil.FakeSubmitter{}, WithWorkers(2))

	res, err := f.Run(context.Background(), Trigger{})
	require.Error(t, err)
	assert.Equal(t, executor.RunFailed, res.Status)
	assert.Equal(t, pipeline.ResetNodeID, res.FailedNode)
	assert.Equal(t, executor.KindExecution, res.ErrorKind())
}

func TestFactory_InvalidDefinition(t *testing.T) {
	def := definition()
	def.Transform.Application = ""
	f := NewFactory(def, pipeline.Deps{Warehouse: testutil.NewFakeWarehouse(), Submitter: &testutil.FakeSubmitter{}})

	_, err := f.Run(context.Background(), Trigger{})
	assert.ErrorContains(t, err, "failed to build task graph")
}

func TestNewFactory_UUIDs(t *testing.T) {
	f := newFactory(testutil.NewFakeWarehouse(), &testutil.FakeSubmitter{})
	s, err := f.NewSession(context.Background(), Trigger{})
	require.NoError(t, err)
	assert.Len(t, s.ID, 36)
}
