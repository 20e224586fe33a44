package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/gridetl/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		expected *app.Config
	}{
		{
			name: "positional path with defaults",
			args: []string{"configs/etl_covid.hcl"},
			expected: &app.Config{
				ConfigPath: "configs/etl_covid.hcl",
				LogFormat:  "json",
				LogLevel:   "info",
			},
		},
		{
			name: "long flag wins over shorthand",
			args: []string{"--config", "a.hcl", "-c", "b.hcl"},
			expected: &app.Config{
				ConfigPath: "a.hcl",
				LogFormat:  "json",
				LogLevel:   "info",
			},
		},
		{
			name: "all flags",
			args: []string{"-c", "p.hcl", "--log-format", "TEXT", "--log-level", "Debug", "--workers", "4", "--healthcheck-port", "8080"},
			expected: &app.Config{
				ConfigPath:      "p.hcl",
				LogFormat:       "text",
				LogLevel:        "debug",
				WorkerCount:     4,
				HealthcheckPort: 8080,
			},
		},
		{
			name: "conf json",
			args: []string{"-c", "p.hcl", "--conf", `{"process_date":"2024-03-01","n":7}`},
			expected: &app.Config{
				ConfigPath: "p.hcl",
				LogFormat:  "json",
				LogLevel:   "info",
				Conf:       map[string]any{"process_date": "2024-03-01", "n": json.Number("7")},
			},
		},
		{
			name: "conf null value is kept",
			args: []string{"-c", "p.hcl", "--conf", `{"process_date":null}`},
			expected: &app.Config{
				ConfigPath: "p.hcl",
				LogFormat:  "json",
				LogLevel:   "info",
				Conf:       map[string]any{"process_date": nil},
			},
		},
		{
			name: "process-date shorthand overrides conf",
			args: []string{"-c", "p.hcl", "--conf", `{"process_date":"2024-01-01","x":"y"}`, "--process-date", "2024-03-01"},
			expected: &app.Config{
				ConfigPath: "p.hcl",
				LogFormat:  "json",
				LogLevel:   "info",
				Conf:       map[string]any{"process_date": "2024-03-01", "x": "y"},
			},
		},
		{
			name: "serve",
			args: []string{"--serve", "p.hcl"},
			expected: &app.Config{
				ConfigPath: "p.hcl",
				LogFormat:  "json",
				LogLevel:   "info",
				Serve:      true,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, exit, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.False(t, exit)
			if diff := cmp.Diff(tc.expected, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown flag", []string{"--nope"}, "flag provided but not defined"},
		{"bad log format", []string{"--log-format", "xml", "p.hcl"}, "invalid log-format"},
		{"bad log level", []string{"--log-level", "trace", "p.hcl"}, "invalid log-level"},
		{"conf not json", []string{"--conf", "process_date=2024-03-01", "p.hcl"}, "invalid conf"},
		{"conf array", []string{"--conf", `["2024-03-01"]`, "p.hcl"}, "invalid conf"},
		{"conf trailing data", []string{"--conf", `{} {}`, "p.hcl"}, "single JSON object"},
		{"negative workers", []string{"--workers", "-1", "p.hcl"}, "WorkerCount"},
		{"serve with override", []string{"--serve", "--process-date", "2024-03-01", "p.hcl"}, "serve mode"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, exit, err := Parse(tc.args, &bytes.Buffer{})
			assert.Nil(t, cfg)
			assert.False(t, exit)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, ExitUsage, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantErr)
		})
	}
}

func TestParse_HelpAndNoPath(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		if len(args) == 0 {
			assert.Contains(t, out.String(), "Usage:")
		}
	}
}
