package wire

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/spatekit/spate/internal/workflow"
)

func fsError(msg, path string, err error) error {
	return &workflow.Error{
		Kind: workflow.KindFilesystem, Msg: msg, Path: path, Err: err,
	}
}

func gzipped(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

// Save writes the workflow document to a file, format picked from the
// extension and gzip applied for a .gz suffix.
func Save(fsys afero.Fs, w *workflow.Workflow, path string) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fsError("cannot create file", path, err)
	}

	var out io.Writer = f
	var gz *gzip.Writer
	if gzipped(path) {
		gz = gzip.NewWriter(f)
		out = gz
	}

	if err := Encode(w, out, FormatForPath(path)); err != nil {
		f.Close()
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return fsError("cannot finish gzip stream", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fsError("cannot close file", path, err)
	}
	return nil
}

// Load reads a workflow document from a file, transparently decompressing
// a .gz suffix, and rebuilds the workflow.
func Load(fsys afero.Fs, path string, opts ...workflow.Option) (*workflow.Workflow, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fsError("cannot open file", path, err)
	}
	defer f.Close()

	var in io.Reader = f
	if gzipped(path) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, serializationError("malformed gzip stream in "+path, err)
		}
		defer gz.Close()
		in = gz
	}

	return Decode(in, FormatForPath(path), opts...)
}
