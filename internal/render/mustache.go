package render

import (
	"strings"

	"github.com/spatekit/spate/internal/workflow"
)

// Mustache is the default engine: {{NAME}} interpolation, {{#LIST}} section
// iteration with {{.}} bound to the element, {{^LIST}} inverted sections,
// and {{! }} comments. Substitution is raw: values are never escaped, since
// bodies are shell text, not markup. Undefined names fail the render.
//
// The Go mustache ports HTML-escape interpolations with no way to turn that
// off, which corrupts redirections and quoting in job bodies, so the subset
// the toolkit needs is implemented here.
type Mustache struct{}

// Name implements Engine.
func (Mustache) Name() string { return "mustache" }

// Render implements Engine.
func (Mustache) Render(template string, env Env) (string, error) {
	nodes, err := parseMustache(template)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := renderNodes(&sb, nodes, env, nil); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// DefaultTemplate implements Engine.
func (Mustache) DefaultTemplate(Env) string {
	return "{{#OUTPUTS}}touch \"{{.}}\"\n{{/OUTPUTS}}"
}

// A parsed template is a sequence of nodes; sections nest.
type mustacheNode interface{}

type textNode string

type varNode string

type sectionNode struct {
	name     string
	inverted bool
	children []mustacheNode
}

func templateErrorf(format string, args ...any) error {
	return workflow.Errorf(workflow.KindTemplate, format, args...)
}

// parseMustache tokenizes the template into a node tree.
func parseMustache(template string) ([]mustacheNode, error) {
	type frame struct {
		name     string
		inverted bool
		nodes    []mustacheNode
	}
	stack := []*frame{{}}
	top := func() *frame { return stack[len(stack)-1] }

	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}
		if open > 0 {
			top().nodes = append(top().nodes, textNode(rest[:open]))
		}
		rest = rest[open+2:]

		closing := strings.Index(rest, "}}")
		if closing < 0 {
			return nil, templateErrorf("unterminated tag: missing closing braces")
		}
		tag := strings.TrimSpace(rest[:closing])
		rest = rest[closing+2:]

		switch {
		case tag == "":
			return nil, templateErrorf("empty tag")

		case strings.HasPrefix(tag, "!"):
			// comment, dropped

		case strings.HasPrefix(tag, "#"), strings.HasPrefix(tag, "^"):
			stack = append(stack, &frame{
				name:     strings.TrimSpace(tag[1:]),
				inverted: tag[0] == '^',
			})

		case strings.HasPrefix(tag, "/"):
			name := strings.TrimSpace(tag[1:])
			if len(stack) == 1 {
				return nil, templateErrorf("unexpected section close %q", name)
			}
			closed := top()
			if closed.name != name {
				return nil, templateErrorf(
					"section close %q does not match open %q", name, closed.name)
			}
			stack = stack[:len(stack)-1]
			top().nodes = append(top().nodes, &sectionNode{
				name:     closed.name,
				inverted: closed.inverted,
				children: closed.nodes,
			})

		default:
			top().nodes = append(top().nodes, varNode(tag))
		}
	}

	if len(stack) > 1 {
		return nil, templateErrorf("unclosed section %q", top().name)
	}
	if rest != "" {
		top().nodes = append(top().nodes, textNode(rest))
	}
	return top().nodes, nil
}

// renderNodes walks the tree. dot carries the element bound by the
// enclosing section, if any.
func renderNodes(sb *strings.Builder, nodes []mustacheNode, env Env, dot any) error {
	lookup := func(name string) (any, error) {
		if name == "." {
			if dot == nil {
				return nil, templateErrorf("'.' used outside of a section")
			}
			return dot, nil
		}
		v, ok := env[name]
		if !ok {
			return nil, templateErrorf("undefined template variable %q", name)
		}
		return v, nil
	}

	for _, n := range nodes {
		switch node := n.(type) {
		case textNode:
			sb.WriteString(string(node))

		case varNode:
			v, err := lookup(string(node))
			if err != nil {
				return err
			}
			sb.WriteString(formatValue(v))

		case *sectionNode:
			v, err := lookup(node.name)
			if err != nil {
				return err
			}
			items, err := sectionItems(node.name, v)
			if err != nil {
				return err
			}
			if node.inverted {
				if len(items) == 0 {
					if err := renderNodes(sb, node.children, env, dot); err != nil {
						return err
					}
				}
				continue
			}
			for _, item := range items {
				if err := renderNodes(sb, node.children, env, item); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// sectionItems coerces a section value into the list it iterates.
func sectionItems(name string, v any) ([]any, error) {
	switch val := v.(type) {
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return items, nil
	case []any:
		return val, nil
	case nil:
		return nil, nil
	case bool:
		if val {
			return []any{val}, nil
		}
		return nil, nil
	default:
		return nil, templateErrorf("section %q is not a list", name)
	}
}
