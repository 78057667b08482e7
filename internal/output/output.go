package output

import (
	"errors"

	"github.com/maxvaer/gmapsprobe/internal/probe"
	"github.com/maxvaer/gmapsprobe/internal/report"
)

// Header describes the scan about to start.
type Header struct {
	Batch  bool
	Keys   []string
	Probes int
	Proxy  string
}

// Writer is implemented by each output format. WriteResult is called in
// scan order, once per (probe, key).
type Writer interface {
	WriteHeader(h Header) error
	WriteResult(res *probe.Result) error
	WriteFooter(rep *report.Report) error
	Close() error
}

// multiWriter fans every call out to several writers.
type multiWriter struct {
	writers []Writer
}

// Multi combines writers. Each call reaches every writer and their errors
// are joined.
func Multi(writers ...Writer) Writer {
	if len(writers) == 1 {
		return writers[0]
	}
	return &multiWriter{writers: writers}
}

func (m *multiWriter) WriteHeader(h Header) error {
	var errs []error
	for _, w := range m.writers {
		errs = append(errs, w.WriteHeader(h))
	}
	return errors.Join(errs...)
}

func (m *multiWriter) WriteResult(res *probe.Result) error {
	var errs []error
	for _, w := range m.writers {
		errs = append(errs, w.WriteResult(res))
	}
	return errors.Join(errs...)
}

func (m *multiWriter) WriteFooter(rep *report.Report) error {
	var errs []error
	for _, w := range m.writers {
		errs = append(errs, w.WriteFooter(rep))
	}
	return errors.Join(errs...)
}

func (m *multiWriter) Close() error {
	var errs []error
	for _, w := range m.writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
