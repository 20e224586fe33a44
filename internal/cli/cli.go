package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/gridetl/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	ExitRunFailed = 1
	ExitUsage     = 2
)

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("gridetl", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gridetl - Runs a daily partition-refresh pipeline: resolve the partition key,
ensure the target table, clear the partition and reload it with a Spark job.

Usage:
  gridetl [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to a pipeline .hcl file or a directory containing .hcl files.

Examples:
  gridetl -c configs/etl_covid.hcl
  gridetl -c configs/etl_covid.hcl --process-date 2024-03-01
  gridetl -c configs/etl_covid.hcl --conf '{"process_date":"2024-03-01"}'
  gridetl -c configs/etl_covid.hcl --serve --healthcheck-port 8080

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the pipeline file or directory.")
	cFlag := flagSet.String("c", "", "Path to the pipeline file or directory (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 0, "Number of concurrent workers for the executor. 0 uses the pipeline's setting.")
	confFlag := flagSet.String("conf", "", "JSON object of run override parameters, e.g. '{\"process_date\":\"2024-03-01\"}'.")
	processDateFlag := flagSet.String("process-date", "", "Partition key to (re)process. Shorthand for --conf '{\"process_date\":...}'.")
	serveFlag := flagSet.Bool("serve", false, "Keep running and trigger the pipeline on its schedule.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Config path determined.", "path", path)

	if path == "" {
		slog.Debug("No config path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	conf, err := parseConf(*confFlag)
	if err != nil {
		return nil, false, usageError("invalid conf: %v", err)
	}
	if *processDateFlag != "" {
		if conf == nil {
			conf = make(map[string]any)
		}
		conf["process_date"] = *processDateFlag
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath:      path,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		WorkerCount:     *workersFlag,
		Conf:            conf,
		Serve:           *serveFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// parseConf decodes the --conf JSON object. Numbers are kept in their
// literal form.
func parseConf(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var conf map[string]any
	if err := dec.Decode(&conf); err != nil {
		return nil, fmt.Errorf("must be a JSON object: %w", err)
	}
	if dec.More() {
		return nil, errors.New("must be a single JSON object")
	}
	return conf, nil
}
