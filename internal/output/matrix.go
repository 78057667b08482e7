package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/maxvaer/gmapsprobe/internal/report"
	"github.com/mattn/go-runewidth"
)

const (
	cellVuln    = "VULN"
	cellSafe    = "safe"
	cellMissing = "-"
	cellGap     = 2
)

// RenderMatrix writes the batch comparison table: one row per probe in
// alphabetical order, one column per key, followed by a per-key summary.
func RenderMatrix(w io.Writer, rep *report.Report, noColor bool) error {
	probes := rep.SortedProbes()
	keys := rep.Keys()

	nameWidth := runewidth.StringWidth("Endpoint")
	for _, p := range probes {
		nameWidth = max(nameWidth, runewidth.StringWidth(p))
	}
	labels := make([]string, len(keys))
	widths := make([]int, len(keys))
	for i, k := range keys {
		labels[i] = report.KeyLabel(k)
		widths[i] = max(runewidth.StringWidth(labels[i]), len(cellVuln))
	}

	paint := func(color, s string) string {
		if noColor {
			return s
		}
		return color + s + colorReset
	}
	gap := strings.Repeat(" ", cellGap)

	var b strings.Builder
	total := nameWidth
	for _, wd := range widths {
		total += cellGap + wd
	}
	rule := strings.Repeat("=", total)

	b.WriteString("\n" + rule + "\n")
	b.WriteString(runewidth.FillRight("Endpoint", nameWidth))
	for i, l := range labels {
		b.WriteString(gap + runewidth.FillRight(l, widths[i]))
	}
	b.WriteString("\n" + rule + "\n")

	for _, p := range probes {
		b.WriteString(runewidth.FillRight(p, nameWidth))
		for i, k := range keys {
			cell, color := cellMissing, ""
			if res, ok := rep.Get(p, k); ok {
				cell, color = cellSafe, colorDim
				if res.Vulnerable {
					cell, color = cellVuln, colorVulnRed
				}
			}
			// pad before painting so escape codes don't count toward width
			padded := runewidth.FillRight(cell, widths[i])
			if color != "" {
				padded = paint(color, cell) + strings.Repeat(" ", widths[i]-len(cell))
			}
			b.WriteString(gap + padded)
		}
		b.WriteString("\n")
	}
	b.WriteString(rule + "\n")

	b.WriteString("\nSummary:\n")
	for i, k := range keys {
		count := rep.VulnerableCount(k)
		line := fmt.Sprintf("%d/%d vulnerable", count, rep.Attempted(k))
		if count > 0 {
			line = paint(colorVulnRed, line)
		} else {
			line = paint(colorGreen, line)
		}
		fmt.Fprintf(&b, "  %s: %s\n", labels[i], line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
