package rule

import (
	"bytes"

	"github.com/maxvaer/gmapsprobe/internal/scanner"
)

// LacksRule matches when the body does not contain a marker. Google's JSON
// APIs report a rejected key through an error field, so its absence means
// the call went through.
type LacksRule struct {
	marker []byte
}

// Lacks creates a rule matching bodies without marker.
func Lacks(marker string) *LacksRule {
	return &LacksRule{marker: []byte(marker)}
}

func (l *LacksRule) Name() string { return "lacks:" + string(l.marker) }

func (l *LacksRule) Match(resp *scanner.Response) bool {
	return !bytes.Contains(resp.Body, l.marker)
}

// ContainsRule matches when the body contains a marker.
type ContainsRule struct {
	marker []byte
}

// Contains creates a rule matching bodies with marker.
func Contains(marker string) *ContainsRule {
	return &ContainsRule{marker: []byte(marker)}
}

func (c *ContainsRule) Name() string { return "contains:" + string(c.marker) }

func (c *ContainsRule) Match(resp *scanner.Response) bool {
	return bytes.Contains(resp.Body, c.marker)
}
