package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/gridetl/internal/config"
	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	environ func() []string
}

// NewLoader creates a new HCL configuration loader reading the process
// environment.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

var _ config.Loader = (*Loader)(nil)

// Load parses path (a .hcl file, or a directory searched recursively for
// them), evaluates all expressions and returns the validated model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	files, err := l.findFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	parsed := make([]*hcl.File, 0, len(files))
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		parsed = append(parsed, f)
	}
	body := hcl.MergeFiles(parsed)

	var vroot variablesRoot
	if diags := gohcl.DecodeBody(body, nil, &vroot); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode variables: %w", diags)
	}

	env, rawEnv := envObject(l.environ())
	vars, err := resolveVariables(vroot.Variables, env, rawEnv)
	if err != nil {
		return nil, err
	}

	var root pipelineRoot
	if diags := gohcl.DecodeBody(vroot.Remain, newEvalContext(vars, env), &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode pipeline configuration: %w", diags)
	}

	model, err := translate(&root, vars)
	if err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Debug("HCL loading complete.",
		"pipeline", model.Pipeline.ID,
		"variables", len(model.Variables),
		"connections", len(model.Connections),
		"columns", len(model.Table.Columns),
	)
	return model, nil
}

func (l *Loader) findFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing config path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %s", path)
	}
	return files, nil
}
