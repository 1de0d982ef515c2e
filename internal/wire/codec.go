package wire

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spatekit/spate/internal/workflow"
)

// Format selects the document rendering.
type Format int

const (
	// FormatYAML is the default rendering.
	FormatYAML Format = iota
	// FormatJSON renders the same document tree as indented JSON.
	FormatJSON
)

// FormatForPath picks the format from a file name, looking through a
// trailing .gz: .json selects JSON, everything else YAML.
func FormatForPath(path string) Format {
	p := strings.ToLower(path)
	p = strings.TrimSuffix(p, ".gz")
	if strings.HasSuffix(p, ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Encode writes the workflow document to out.
func Encode(w *workflow.Workflow, out io.Writer, format Format) error {
	doc := FromWorkflow(w)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return serializationError("cannot encode JSON document", err)
		}
	default:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return serializationError("cannot encode YAML document", err)
		}
		if err := enc.Close(); err != nil {
			return serializationError("cannot encode YAML document", err)
		}
	}
	return nil
}

// Decode reads a workflow document from in and rebuilds the workflow.
func Decode(in io.Reader, format Format, opts ...workflow.Option) (*workflow.Workflow, error) {
	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, &workflow.Error{
			Kind: workflow.KindFilesystem, Msg: "cannot read document", Err: err,
		}
	}

	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, serializationError("malformed JSON document", err)
		}
	default:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, serializationError("malformed YAML document", err)
		}
	}

	return doc.Workflow(opts...)
}
