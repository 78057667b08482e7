// Package probe defines a single endpoint check: how to build its request
// for a key and how to turn the response into a result.
package probe

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/maxvaer/gmapsprobe/internal/rule"
	"github.com/maxvaer/gmapsprobe/internal/scanner"
)

// KeyPlaceholder is replaced with the API key in URLs, headers and bodies.
const KeyPlaceholder = "{key}"

// Cost is one line of the cost table shown for a vulnerable probe.
type Cost struct {
	API   string `json:"api" yaml:"api"`
	Price string `json:"price" yaml:"price"`
}

// Definition is one catalog entry. Definitions are built once and never
// modified.
type Definition struct {
	Name       string
	Method     string
	URL        string
	Headers    map[string]string
	Body       string
	NoRedirect bool
	Rule       rule.Rule
	Reason     ReasonSource
	Costs      []Cost
}

// Result is the classification of one (probe, key) pair.
type Result struct {
	Index      int    `json:"index" yaml:"index"`
	Probe      string `json:"probe" yaml:"probe"`
	Method     string `json:"method" yaml:"method"`
	Key        string `json:"key" yaml:"key"`
	Vulnerable bool   `json:"vulnerable" yaml:"vulnerable"`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty"`
	PoC        string `json:"poc,omitempty" yaml:"poc,omitempty"`
	Costs      []Cost `json:"costs,omitempty" yaml:"costs,omitempty"`
	StatusCode int    `json:"status,omitempty" yaml:"status,omitempty"`
	Rule       string `json:"rule" yaml:"rule"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Request builds the HTTP request for key.
func (d *Definition) Request(key string) scanner.Request {
	method := d.Method
	if method == "" {
		method = http.MethodGet
	}
	var headers map[string]string
	if len(d.Headers) > 0 {
		headers = make(map[string]string, len(d.Headers))
		for k, v := range d.Headers {
			headers[k] = interpolate(v, key)
		}
	}
	return scanner.Request{
		Method:     method,
		URL:        interpolate(d.URL, key),
		Headers:    headers,
		Body:       interpolate(d.Body, key),
		NoRedirect: d.NoRedirect,
	}
}

// Classify applies the probe's rule to resp. index is the probe's 1-based
// position in the catalog.
func (d *Definition) Classify(index int, key string, resp *scanner.Response) Result {
	req := d.Request(key)
	res := Result{
		Index:      index,
		Probe:      d.Name,
		Method:     req.Method,
		Key:        key,
		StatusCode: resp.StatusCode,
		Rule:       d.Rule.Name(),
	}
	if d.Rule.Match(resp) {
		res.Vulnerable = true
		res.PoC = PoC(req)
		res.Costs = d.Costs
		return res
	}
	res.Reason = d.Reason.Explain(req.URL, resp)
	return res
}

// Failed records a transport error as a non-vulnerable result.
func (d *Definition) Failed(index int, key string, err error) Result {
	req := d.Request(key)
	return Result{
		Index:  index,
		Probe:  d.Name,
		Method: req.Method,
		Key:    key,
		Rule:   d.Rule.Name(),
		Reason: fmt.Sprintf("request failed: %v", err),
		Error:  err.Error(),
	}
}

func interpolate(s, key string) string {
	return strings.ReplaceAll(s, KeyPlaceholder, key)
}

// Redact masks key wherever it appears in s, keeping the first and last
// four characters of long keys.
func Redact(s, key string) string {
	if key == "" {
		return s
	}
	mask := "****"
	if len(key) > 12 {
		mask = key[:4] + "****" + key[len(key)-4:]
	}
	return strings.ReplaceAll(s, key, mask)
}
