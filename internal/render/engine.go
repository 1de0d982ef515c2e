package render

import (
	"sync"

	"github.com/spatekit/spate/internal/workflow"
)

// Engine is a pure substitution strategy.
type Engine interface {
	// Name returns the identifier used to select the engine.
	Name() string
	// Render substitutes env into template. A missing variable or a
	// malformed template fails with a TemplateError.
	Render(template string, env Env) (string, error)
	// DefaultTemplate returns the body used for abstract jobs: touch
	// commands creating each declared output.
	DefaultTemplate(env Env) string
}

// Context carries the engine through an export. Exporters snapshot it at
// entry, so swapping the process default mid-export never mixes engines.
type Context struct {
	Engine Engine
}

var (
	defaultMu     sync.RWMutex
	defaultEngine Engine = Mustache{}
)

// Default returns a context holding the process-wide default engine.
func Default() Context {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return Context{Engine: defaultEngine}
}

// SetDefaultEngine replaces the process-wide default engine.
func SetDefaultEngine(e Engine) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultEngine = e
}

// EngineByName resolves an engine from its configuration name.
func EngineByName(name string) (Engine, error) {
	switch name {
	case "simple":
		return Simple{}, nil
	case "mustache", "":
		return Mustache{}, nil
	default:
		return nil, workflow.Errorf(workflow.KindInvalidName,
			"unknown template engine %q (want 'simple' or 'mustache')", name)
	}
}

// Job renders the body of one job: its template, or the engine's default
// template when the job is abstract, against the job's environment.
func Job(ctx Context, w *workflow.Workflow, id string) (string, error) {
	job, err := w.GetJob(id)
	if err != nil {
		return "", err
	}

	env := JobEnv(job, w.Vars())
	tmpl := job.Template()
	if job.Abstract() {
		tmpl = ctx.Engine.DefaultTemplate(env)
	}
	return ctx.Engine.Render(tmpl, env)
}
