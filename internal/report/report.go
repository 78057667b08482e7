// Package report accumulates probe results for one scan.
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/maxvaer/gmapsprobe/internal/probe"
)

var (
	// ErrDuplicate is returned when a (probe, key) cell is added twice.
	ErrDuplicate = errors.New("duplicate result")
	// ErrUnknownCell is returned for a probe or key the report was not built for.
	ErrUnknownCell = errors.New("unknown probe or key")
)

// MaxKeyLabel is the number of key characters shown in matrix columns.
const MaxKeyLabel = 20

type cell struct {
	probe string
	key   string
}

// Report holds one result per (probe, key) pair, in the order they were
// added.
type Report struct {
	ID       string
	Started  time.Time
	Finished time.Time

	probes  []string
	keys    []string
	known   map[cell]struct{}
	cells   map[cell]int
	results []probe.Result
}

// New creates an empty report for the given probe names and keys.
func New(probes, keys []string) *Report {
	r := &Report{
		ID:      uuid.NewString(),
		Started: time.Now(),
		probes:  append([]string(nil), probes...),
		keys:    append([]string(nil), keys...),
		known:   make(map[cell]struct{}, len(probes)*len(keys)),
		cells:   make(map[cell]int, len(probes)*len(keys)),
	}
	for _, p := range probes {
		for _, k := range keys {
			r.known[cell{p, k}] = struct{}{}
		}
	}
	return r
}

// Add records a result. Each cell accepts exactly one result.
func (r *Report) Add(res probe.Result) error {
	c := cell{res.Probe, res.Key}
	if _, ok := r.known[c]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCell, res.Probe)
	}
	if _, dup := r.cells[c]; dup {
		return fmt.Errorf("%w for %q", ErrDuplicate, res.Probe)
	}
	r.cells[c] = len(r.results)
	r.results = append(r.results, res)
	return nil
}

// Finish stamps the completion time.
func (r *Report) Finish() {
	r.Finished = time.Now()
}

// Get returns the result for a cell.
func (r *Report) Get(probeName, key string) (probe.Result, bool) {
	i, ok := r.cells[cell{probeName, key}]
	if !ok {
		return probe.Result{}, false
	}
	return r.results[i], true
}

// Results returns all results in insertion order.
func (r *Report) Results() []probe.Result {
	return append([]probe.Result(nil), r.results...)
}

// Probes returns the probe names in catalog order.
func (r *Report) Probes() []string { return append([]string(nil), r.probes...) }

// Keys returns the scanned keys in input order.
func (r *Report) Keys() []string { return append([]string(nil), r.keys...) }

// SortedProbes returns the probe names in alphabetical order.
func (r *Report) SortedProbes() []string {
	out := r.Probes()
	sort.Strings(out)
	return out
}

// Missing lists the probe names that have no result for key.
func (r *Report) Missing(key string) []string {
	var out []string
	for _, p := range r.probes {
		if _, ok := r.cells[cell{p, key}]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// Complete reports whether every cell has a result.
func (r *Report) Complete() bool {
	return len(r.results) == len(r.known)
}

// Attempted returns how many probes produced a result for key.
func (r *Report) Attempted(key string) int {
	return len(r.probes) - len(r.Missing(key))
}

// VulnerableCount returns how many probes classified key as vulnerable.
func (r *Report) VulnerableCount(key string) int {
	n := 0
	for _, res := range r.results {
		if res.Key == key && res.Vulnerable {
			n++
		}
	}
	return n
}

// Costs returns the cost lines of every vulnerable probe for key, in scan
// order.
func (r *Report) Costs(key string) []probe.Cost {
	var out []probe.Cost
	for _, res := range r.results {
		if res.Key == key && res.Vulnerable {
			out = append(out, res.Costs...)
		}
	}
	return out
}

// KeyLabel shortens a key for column headers. Length is counted in
// characters, not bytes.
func KeyLabel(key string) string {
	r := []rune(key)
	if len(r) <= MaxKeyLabel {
		return key
	}
	return string(r[:MaxKeyLabel]) + "..."
}
