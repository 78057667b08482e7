package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/maxvaer/gmapsprobe/internal/probe"
	"github.com/maxvaer/gmapsprobe/internal/report"
)

// CSVWriter writes one row per (probe, key) result.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter creates a CSV output writer.
func NewCSVWriter(outputFile string) (*CSVWriter, error) {
	w, closer, err := openOutput(outputFile)
	if err != nil {
		return nil, err
	}
	return &CSVWriter{w: csv.NewWriter(w), closer: closer}, nil
}

func (c *CSVWriter) WriteHeader(_ Header) error {
	return c.w.Write([]string{"probe", "key", "vulnerable", "status", "reason", "poc", "costs"})
}

func (c *CSVWriter) WriteResult(res *probe.Result) error {
	costs := make([]string, len(res.Costs))
	for i, cost := range res.Costs {
		costs[i] = cost.API + ": " + cost.Price
	}
	return c.w.Write([]string{
		res.Probe,
		res.Key,
		strconv.FormatBool(res.Vulnerable),
		strconv.Itoa(res.StatusCode),
		res.Reason,
		res.PoC,
		strings.Join(costs, "; "),
	})
}

func (c *CSVWriter) WriteFooter(_ *report.Report) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	c.w.Flush()
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
