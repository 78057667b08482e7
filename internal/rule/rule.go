package rule

import (
	"strings"

	"github.com/maxvaer/gmapsprobe/internal/scanner"
)

// Rule decides whether a probe response shows the key is usable.
type Rule interface {
	Name() string
	Match(resp *scanner.Response) bool
}

// allRule matches when every rule matches, short-circuiting on the first miss.
type allRule struct {
	rules []Rule
}

// All returns a rule that requires every given rule to match.
func All(rules ...Rule) Rule {
	return &allRule{rules: rules}
}

func (a *allRule) Name() string {
	names := make([]string, len(a.rules))
	for i, r := range a.rules {
		names[i] = r.Name()
	}
	return strings.Join(names, " && ")
}

func (a *allRule) Match(resp *scanner.Response) bool {
	for _, r := range a.rules {
		if !r.Match(resp) {
			return false
		}
	}
	return true
}
