package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/spatekit/spate/internal/workflow"
)

// Simple is the shell-style engine: $NAME and ${NAME} references, $$ as a
// literal dollar. Undefined names fail the render.
type Simple struct{}

// Name implements Engine.
func (Simple) Name() string { return "simple" }

// Render implements Engine.
func (Simple) Render(template string, env Env) (string, error) {
	var missing []string
	expanded := os.Expand(template, func(name string) string {
		if name == "$" {
			return "$"
		}
		v, ok := env[name]
		if !ok {
			missing = append(missing, name)
			return ""
		}
		return formatValue(v)
	})

	if len(missing) > 0 {
		return "", workflow.Errorf(workflow.KindTemplate,
			"undefined template variable %s", strings.Join(quoteAll(missing), ", "))
	}
	return expanded, nil
}

// DefaultTemplate implements Engine: one touch line per declared output.
func (Simple) DefaultTemplate(env Env) string {
	n, _ := env["OUTPUTN"].(int)
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("touch \"$OUTPUT%d\"", i)
	}
	return strings.Join(lines, "\n")
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = fmt.Sprintf("%q", name)
	}
	return out
}
