package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/gridetl/internal/compute"
	"github.com/specialistvlad/gridetl/internal/executor"
	"github.com/specialistvlad/gridetl/internal/node"
	"github.com/specialistvlad/gridetl/internal/runctx"
	"github.com/specialistvlad/gridetl/internal/task"
	"github.com/specialistvlad/gridetl/internal/testutil"
	"github.com/specialistvlad/gridetl/internal/warehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableName = "covid_colombia"

func testDefinition() Definition {
	return Definition{
		ID: "etl_covid",
		Table: warehouse.Table{
			Name: tableName,
			Columns: []warehouse.Column{
				{Name: "id_de_caso", Type: "INT"},
				{Name: "process_date", Type: "VARCHAR(10)"},
			},
			PartitionColumn: "process_date",
			DistKey:         "process_date",
			SortKeys:        []string{"process_date", "id_de_caso"},
		},
		Transform: Transform{
			Name:        "spark_etl_covid",
			Application: "/opt/scripts/ETL_Covid.py",
		},
	}
}

type fixture struct {
	wh    *testutil.FakeWarehouse
	sub   *testutil.FakeSubmitter
	clock Clock
}

func newFixture() *fixture {
	wh := testutil.NewFakeWarehouse()
	return &fixture{
		wh:    wh,
		sub:   &testutil.FakeSubmitter{Warehouse: wh, Table: tableName, RowsPerRun: 10},
		clock: testutil.FixedClock(time.Date(2024, 3, 2, 0, 5, 0, 0, time.Local)),
	}
}

func (f *fixture) run(t *testing.T, conf map[string]any) (*executor.Result, error) {
	t.Helper()
	ctx := context.Background()
	g, err := Build(ctx, testDefinition(), conf, Deps{Warehouse: f.wh, Submitter: f.sub, Clock: f.clock})
	require.NoError(t, err)
	return executor.New(g, runctx.New("run-"+t.Name())).Execute(ctx)
}

func nodeStatuses(res *executor.Result) map[string]node.Status {
	out := make(map[string]node.Status)
	for _, n := range res.Nodes {
		out[n.ID] = n.Status
	}
	return out
}

func TestPipeline_OverrideRun(t *testing.T) {
	f := newFixture()

	res, err := f.run(t, map[string]any{"process_date": "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, executor.RunSucceeded, res.Status)

	assert.Equal(t, []string{"2024-03-01"}, f.wh.DeleteCalls)
	expectedJobs := []compute.Job{{
		Name:        "spark_etl_covid",
		Application: "/opt/scripts/ETL_Covid.py",
		Args:        []string{"--process-date", "2024-03-01"},
	}}
	if diff := cmp.Diff(expectedJobs, f.sub.Jobs()); diff != "" {
		t.Errorf("submitted jobs mismatch (-want +got):\n%s", diff)
	}

	var order []string
	for _, n := range res.Nodes {
		order = append(order, n.ID)
		assert.Equal(t, node.StatusSucceeded, n.Status, n.ID)
	}
	assert.Equal(t, []string{"get_process_date", "create_table", "clean_process_date", "spark_etl_covid"}, order)
}

func TestPipeline_ClockRun(t *testing.T) {
	f := newFixture()

	_, err := f.run(t, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-02"}, f.wh.DeleteCalls)
	assert.Equal(t, 10, f.wh.Rows(tableName, "2024-03-02"))
}

func TestPipeline_RerunReplacesPartition(t *testing.T) {
	f := newFixture()
	conf := map[string]any{"process_date": "2024-03-01"}

	_, err := f.run(t, conf)
	require.NoError(t, err)
	require.True(t, f.wh.Insert(tableName, "2024-02-29", 7))
	once := f.wh.Partitions(tableName)

	_, err = f.run(t, conf)
	require.NoError(t, err)
	_, err = f.run(t, conf)
	require.NoError(t, err)

	assert.Equal(t, once, f.wh.Partitions(tableName))
	assert.Equal(t, map[string]int{"2024-03-01": 10, "2024-02-29": 7}, f.wh.Partitions(tableName))
	assert.Equal(t, 3, f.wh.EnsureCalls)
}

func TestPipeline_EnsureSchemaFailure(t *testing.T) {
	f := newFixture()
	f.wh.EnsureErr = errors.New("permission denied for schema public")

	res, err := f.run(t, map[string]any{"process_date": "2024-03-01"})
	require.Error(t, err)

	assert.Equal(t, executor.RunFailed, res.Status)
	assert.Equal(t, SchemaNodeID, res.FailedNode)
	assert.Equal(t, executor.KindExecution, res.ErrorKind())

	var execErr *task.ExecutionError
	assert.ErrorAs(t, err, &execErr)

	expected := map[string]node.Status{
		"get_process_date":   node.StatusSucceeded,
		"create_table":       node.StatusFailed,
		"clean_process_date": node.StatusSkipped,
		"spark_etl_covid":    node.StatusSkipped,
	}
	assert.Equal(t, expected, nodeStatuses(res))
	assert.Empty(t, f.wh.DeleteCalls)
	assert.Empty(t, f.sub.Jobs())
}

func TestPipeline_ComputeFailure(t *testing.T) {
	f := newFixture()
	f.sub.Err = errors.New("exit status 1")

	res, err := f.run(t, map[string]any{"process_date": "2024-03-01"})
	require.Error(t, err)
	assert.Equal(t, "spark_etl_covid", res.FailedNode)
	assert.Equal(t, executor.KindExecution, res.ErrorKind())
	// The partition was already cleared; a re-trigger reloads it.
	assert.Equal(t, 0, f.wh.Rows(tableName, "2024-03-01"))

	f.sub.Err = nil
	_, err = f.run(t, map[string]any{"process_date": "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, 10, f.wh.Rows(tableName, "2024-03-01"))
}

func TestResetPartition_MissingKey(t *testing.T) {
	wh := testutil.NewFakeWarehouse()
	r := &ResetPartition{Warehouse: wh, Table: testDefinition().Table}

	err := r.Run(context.Background(), runctx.New("run-1"))
	assert.ErrorIs(t, err, runctx.ErrMissingKey)
	assert.Equal(t, executor.KindMissingKey, executor.Kind(err))
	assert.Empty(t, wh.DeleteCalls)
}

func TestSubmitCompute_MissingKey(t *testing.T) {
	sub := &testutil.FakeSubmitter{}
	s := &SubmitCompute{Submitter: sub, JobName: "j", Application: "a.py"}

	err := s.Run(context.Background(), runctx.New("run-1"))
	assert.ErrorIs(t, err, runctx.ErrMissingKey)
	assert.Empty(t, sub.Jobs())
}

func TestSubmitCompute_JobCopiesConf(t *testing.T) {
	s := &SubmitCompute{JobName: "j", Application: "a.py", Conf: map[string]string{"k": "v"}}
	job := s.Job("2024-03-01")
	job.Conf["k"] = "changed"
	assert.Equal(t, "v", s.Conf["k"])
}

func TestEnsureSchema_IsRepeatable(t *testing.T) {
	wh := testutil.NewFakeWarehouse()
	e := &EnsureSchema{Warehouse: wh, Table: testDefinition().Table}

	for range 3 {
		require.NoError(t, e.Run(context.Background(), runctx.New("run-1")))
	}
	assert.True(t, wh.HasTable(tableName))
	assert.Equal(t, 3, wh.EnsureCalls)
}

func TestBuild_Validation(t *testing.T) {
	deps := Deps{Warehouse: testutil.NewFakeWarehouse(), Submitter: &testutil.FakeSubmitter{}}

	testCases := []struct {
		name    string
		mutate  func(*Definition, *Deps)
		wantErr string
	}{
		{"no transform name", func(d *Definition, _ *Deps) { d.Transform.Name = "" }, "transform name is required"},
		{"transform name collides", func(d *Definition, _ *Deps) { d.Transform.Name = ResetNodeID }, "collides"},
		{"no application", func(d *Definition, _ *Deps) { d.Transform.Application = "" }, "application is required"},
		{"bad table", func(d *Definition, _ *Deps) { d.Table.PartitionColumn = "x" }, "partition column"},
		{"no warehouse", func(_ *Definition, p *Deps) { p.Warehouse = nil }, "warehouse is not configured"},
		{"no submitter", func(_ *Definition, p *Deps) { p.Submitter = nil }, "submitter is not configured"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			def, d := testDefinition(), deps
			tc.mutate(&def, &d)
			_, err := Build(context.Background(), def, nil, d)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
