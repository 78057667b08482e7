package rule

import (
	"strconv"
	"strings"

	"github.com/maxvaer/gmapsprobe/internal/scanner"
)

// StatusRule matches when the response status is one of a fixed set.
type StatusRule struct {
	codes []int
}

// Status creates a rule matching any of the given status codes.
func Status(codes ...int) *StatusRule {
	return &StatusRule{codes: codes}
}

func (s *StatusRule) Name() string {
	parts := make([]string, len(s.codes))
	for i, c := range s.codes {
		parts[i] = strconv.Itoa(c)
	}
	return "status=" + strings.Join(parts, "|")
}

func (s *StatusRule) Match(resp *scanner.Response) bool {
	for _, c := range s.codes {
		if resp.StatusCode == c {
			return true
		}
	}
	return false
}
