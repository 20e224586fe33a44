package hcl

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// VarEnvPrefix prefixes environment variables that override variable defaults.
const VarEnvPrefix = "GRIDETL_VAR_"

// functions available to every expression.
var functions = map[string]function.Function{
	"upper":    stdlib.UpperFunc,
	"lower":    stdlib.LowerFunc,
	"format":   stdlib.FormatFunc,
	"join":     stdlib.JoinFunc,
	"coalesce": stdlib.CoalesceFunc,
}

// envObject exposes the environment as the env.* namespace.
func envObject(environ []string) (cty.Value, map[string]string) {
	raw := make(map[string]string, len(environ))
	vals := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		raw[k] = v
		vals[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vals), raw
}

// resolveVariables evaluates every variable's default against the env-only
// context, then applies environment overrides.
func resolveVariables(blocks []*variableBlock, env cty.Value, rawEnv map[string]string) (map[string]string, error) {
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
		Functions: functions,
	}

	out := make(map[string]string, len(blocks))
	for _, b := range blocks {
		if _, dup := out[b.Name]; dup {
			return nil, fmt.Errorf("variable %q is declared more than once", b.Name)
		}

		if v, ok := rawEnv[VarEnvPrefix+strings.ToUpper(b.Name)]; ok {
			out[b.Name] = v
			continue
		}

		val, diags := b.Default.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate default of variable %q: %w", b.Name, diags)
		}
		if val.IsNull() {
			return nil, fmt.Errorf("variable %q has no default and %s%s is not set", b.Name, VarEnvPrefix, strings.ToUpper(b.Name))
		}
		str, err := convert.Convert(val, cty.String)
		if err != nil {
			return nil, fmt.Errorf("variable %q must be a string, number or bool: %w", b.Name, err)
		}
		out[b.Name] = str.AsString()
	}
	return out, nil
}

// newEvalContext builds the context used for every block except variables.
func newEvalContext(vars map[string]string, env cty.Value) *hcl.EvalContext {
	vals := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		vals[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": cty.ObjectVal(vals),
			"env": env,
		},
		Functions: functions,
	}
}
