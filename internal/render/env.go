package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spatekit/spate/internal/workflow"
)

// Env is the variable environment a template is rendered against.
type Env map[string]any

// JobEnv builds the environment for one job. Workflow-level variables come
// first; the derived INPUT*/OUTPUT* variables are layered on top and win on
// collision.
func JobEnv(job *workflow.Job, vars map[string]any) Env {
	env := make(Env, len(vars)+8)
	for k, v := range vars {
		env[k] = v
	}

	for _, side := range []struct {
		prefix string
		paths  []string
	}{
		{"INPUT", job.Inputs()},
		{"OUTPUT", job.Outputs()},
	} {
		env[side.prefix+"S"] = side.paths
		env[side.prefix+"N"] = len(side.paths)
		if len(side.paths) > 0 {
			env[side.prefix] = side.paths[0]
		} else {
			env[side.prefix] = ""
		}
		for n, p := range side.paths {
			env[side.prefix+strconv.Itoa(n)] = p
		}
	}
	return env
}

// formatValue renders a single environment value as template output.
// Lists collapse to space-separated items, matching what a shell body
// expects from a path list.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case []string:
		return strings.Join(val, " ")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatValue(item)
		}
		return strings.Join(parts, " ")
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
