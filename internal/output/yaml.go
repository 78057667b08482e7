package output

import (
	"io"

	"github.com/maxvaer/gmapsprobe/internal/probe"
	"github.com/maxvaer/gmapsprobe/internal/report"
	"gopkg.in/yaml.v3"
)

// YAMLWriter writes the report as a YAML document.
type YAMLWriter struct {
	w      io.Writer
	closer io.Closer
	batch  bool
}

// NewYAMLWriter creates a YAML output writer.
func NewYAMLWriter(outputFile string) (*YAMLWriter, error) {
	w, closer, err := openOutput(outputFile)
	if err != nil {
		return nil, err
	}
	return &YAMLWriter{w: w, closer: closer}, nil
}

func (y *YAMLWriter) WriteHeader(h Header) error {
	y.batch = h.Batch
	return nil
}

func (y *YAMLWriter) WriteResult(_ *probe.Result) error { return nil }

func (y *YAMLWriter) WriteFooter(rep *report.Report) error {
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(rep, y.batch)); err != nil {
		return err
	}
	return enc.Close()
}

func (y *YAMLWriter) Close() error {
	if y.closer != nil {
		return y.closer.Close()
	}
	return nil
}
