package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gridetl/internal/app"
	"github.com/specialistvlad/gridetl/internal/executor"
	"github.com/specialistvlad/gridetl/internal/hcl"
	"github.com/specialistvlad/gridetl/internal/testutil"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of a system test run.
type HarnessResult struct {
	LogOutput string
	Result    *executor.Result
	Err       error
}

// runPipeline writes files to a temp dir, loads it as the pipeline config and
// runs it once with the given overrides.
func runPipeline(t *testing.T, files map[string]string, cfg app.Config, opts ...app.Option) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg.ConfigPath = dir
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"

	logs := &testutil.SafeBuffer{}
	a, err := app.NewApp(logs, &cfg, hcl.NewLoader(), opts...)
	if err != nil {
		return &HarnessResult{LogOutput: logs.String(), Err: err}
	}
	res, err := a.Run(context.Background())

	if os.Getenv("GRIDETL_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}
	return &HarnessResult{LogOutput: logs.String(), Result: res, Err: err}
}
