package output

import (
	"time"

	"github.com/maxvaer/gmapsprobe/internal/probe"
	"github.com/maxvaer/gmapsprobe/internal/report"
)

// keySummary is the per-key tally in structured reports.
type keySummary struct {
	Key        string       `json:"key" yaml:"key"`
	Vulnerable int          `json:"vulnerable" yaml:"vulnerable"`
	Attempted  int          `json:"attempted" yaml:"attempted"`
	Costs      []probe.Cost `json:"costs,omitempty" yaml:"costs,omitempty"`
}

// document is the shape shared by the JSON and YAML writers.
type document struct {
	ID       string         `json:"id" yaml:"id"`
	Mode     string         `json:"mode" yaml:"mode"`
	Started  time.Time      `json:"started" yaml:"started"`
	Finished time.Time      `json:"finished" yaml:"finished"`
	Probes   []string       `json:"probes" yaml:"probes"`
	Summary  []keySummary   `json:"summary" yaml:"summary"`
	Results  []probe.Result `json:"results" yaml:"results"`
}

func newDocument(rep *report.Report, batch bool) document {
	mode := "single"
	if batch {
		mode = "batch"
	}
	doc := document{
		ID:       rep.ID,
		Mode:     mode,
		Started:  rep.Started,
		Finished: rep.Finished,
		Probes:   rep.Probes(),
		Results:  rep.Results(),
	}
	for _, k := range rep.Keys() {
		doc.Summary = append(doc.Summary, keySummary{
			Key:        k,
			Vulnerable: rep.VulnerableCount(k),
			Attempted:  rep.Attempted(k),
			Costs:      rep.Costs(k),
		})
	}
	return doc
}
