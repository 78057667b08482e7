package probe

import (
	"net/http"
	"sort"
	"strings"

	"github.com/maxvaer/gmapsprobe/internal/scanner"
)

// PoC returns a ready-to-use reproduction: the URL itself for plain GETs,
// a curl command otherwise.
func PoC(req scanner.Request) string {
	if req.Method == http.MethodGet && req.Body == "" && len(req.Headers) == 0 {
		return req.URL
	}

	var b strings.Builder
	b.WriteString("curl")
	if req.Method != http.MethodGet {
		b.WriteString(" -X " + req.Method)
	}

	names := make([]string, 0, len(req.Headers))
	for k := range req.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		b.WriteString(" -H " + ShellQuote(k+": "+req.Headers[k]))
	}
	if req.Body != "" {
		b.WriteString(" -d " + ShellQuote(req.Body))
	}
	b.WriteString(" " + ShellQuote(req.URL))
	return b.String()
}

// ShellQuote single-quotes s for a POSIX shell.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
