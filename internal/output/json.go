package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/maxvaer/gmapsprobe/internal/probe"
	"github.com/maxvaer/gmapsprobe/internal/report"
)

// JSONWriter writes the whole report as one JSON document at the end of
// the scan.
type JSONWriter struct {
	w      io.Writer
	closer io.Closer
	batch  bool
}

// NewJSONWriter creates a JSON output writer.
func NewJSONWriter(outputFile string) (*JSONWriter, error) {
	w, closer, err := openOutput(outputFile)
	if err != nil {
		return nil, err
	}
	return &JSONWriter{w: w, closer: closer}, nil
}

func (j *JSONWriter) WriteHeader(h Header) error {
	j.batch = h.Batch
	return nil
}

func (j *JSONWriter) WriteResult(_ *probe.Result) error { return nil }

func (j *JSONWriter) WriteFooter(rep *report.Report) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(rep, j.batch))
}

func (j *JSONWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

// openOutput returns stdout when outputFile is empty.
func openOutput(outputFile string) (io.Writer, io.Closer, error) {
	if outputFile == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}
