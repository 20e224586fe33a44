package compute

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/gridetl/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	name string
	args []string
	err  error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.name = name
	f.args = args
	return f.err
}

func covidJob() Job {
	return Job{
		Name:        "spark_etl_covid",
		Application: "/opt/scripts/ETL_Covid.py",
		Args:        []string{"--process-date", "2024-03-01"},
	}
}

func TestSparkSubmitter_Args(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      SparkConfig
		job      Job
		expected []string
	}{
		{
			name: "full",
			cfg: SparkConfig{
				Master:          "spark://spark:7077",
				DeployMode:      "client",
				DriverClassPath: "/opt/jars/redshift-jdbc42.jar",
			},
			job: covidJob(),
			expected: []string{
				"--master", "spark://spark:7077",
				"--name", "spark_etl_covid",
				"--deploy-mode", "client",
				"--driver-class-path", "/opt/jars/redshift-jdbc42.jar",
				"/opt/scripts/ETL_Covid.py",
				"--process-date", "2024-03-01",
			},
		},
		{
			name: "minimal with conf merge",
			cfg: SparkConfig{
				Master: "local[*]",
				Conf:   map[string]string{"spark.executor.memory": "2g", "spark.a": "cluster"},
			},
			job: Job{
				Name:        "j",
				Application: "app.py",
				Conf:        map[string]string{"spark.a": "job"},
			},
			expected: []string{
				"--master", "local[*]",
				"--name", "j",
				"--conf", "spark.a=job",
				"--conf", "spark.executor.memory=2g",
				"app.py",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSparkSubmitter(tc.cfg, &fakeRunner{})
			require.NoError(t, err)
			if diff := cmp.Diff(tc.expected, s.Args(tc.job)); diff != "" {
				t.Errorf("argv mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSparkSubmitter_Submit(t *testing.T) {
	runner := &fakeRunner{}
	s, err := NewSparkSubmitter(SparkConfig{Master: "local"}, runner)
	require.NoError(t, err)

	require.NoError(t, s.Submit(context.Background(), covidJob()))
	assert.Equal(t, "spark-submit", runner.name)
	assert.Equal(t, []string{"--process-date", "2024-03-01"}, runner.args[len(runner.args)-2:])
}

func TestSparkSubmitter_SubmitFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	s, err := NewSparkSubmitter(SparkConfig{Master: "local", Binary: "/usr/bin/spark-submit"}, runner)
	require.NoError(t, err)

	err = s.Submit(context.Background(), covidJob())
	var execErr *task.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "spark", execErr.Engine)
	assert.Equal(t, "/usr/bin/spark-submit", runner.name)
}

func TestSparkSubmitter_InvalidJob(t *testing.T) {
	runner := &fakeRunner{}
	s, err := NewSparkSubmitter(SparkConfig{Master: "local"}, runner)
	require.NoError(t, err)

	assert.Error(t, s.Submit(context.Background(), Job{Name: "x"}))
	assert.Empty(t, runner.name, "runner must not be called")
}

func TestSparkConfig_Validate(t *testing.T) {
	assert.Error(t, SparkConfig{}.Validate())
	assert.Error(t, SparkConfig{Master: "local", DeployMode: "yarn"}.Validate())
	assert.NoError(t, SparkConfig{Master: "local", DeployMode: "cluster"}.Validate())
}
