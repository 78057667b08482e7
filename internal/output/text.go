package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maxvaer/gmapsprobe/internal/catalog"
	"github.com/maxvaer/gmapsprobe/internal/probe"
	"github.com/maxvaer/gmapsprobe/internal/report"
	"github.com/mattn/go-runewidth"
)

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorVulnRed = "\033[1;31m"
	colorGreen   = "\033[32m"
	colorDim     = "\033[2m"
)

const (
	probeRule  = "--------------------------"
	tableRule  = "-------------------------------------------------------------"
	costColumn = 32
	reasonMax  = 160
)

// TextWriter writes the human-readable console report. In single-key mode
// every probe gets a numbered block; in batch mode each probe is followed
// by one line per key and the footer is the comparison matrix.
type TextWriter struct {
	w         io.Writer
	noColor   bool
	batch     bool
	total     int
	lastProbe string
}

// NewTextWriter creates a text output writer. If outputFile is empty, stdout
// is used. noColor disables ANSI escape codes.
func NewTextWriter(outputFile string, noColor bool) (*TextWriter, error) {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
	}
	return NewTextWriterTo(w, noColor), nil
}

// NewTextWriterTo creates a text writer on an existing stream.
func NewTextWriterTo(w io.Writer, noColor bool) *TextWriter {
	return &TextWriter{w: w, noColor: noColor}
}

func (t *TextWriter) WriteHeader(h Header) error {
	t.batch = h.Batch
	t.total = h.Probes
	if h.Proxy != "" {
		if _, err := fmt.Fprintf(t.w, "[+] Using proxy: %s\n\n", h.Proxy); err != nil {
			return err
		}
	}
	if h.Batch {
		_, err := fmt.Fprintf(t.w, "[*] Scanning %d keys against %d endpoints\n", len(h.Keys), h.Probes)
		return err
	}
	return nil
}

func (t *TextWriter) WriteResult(res *probe.Result) error {
	if t.batch {
		return t.writeBatchLine(res)
	}
	return t.writeBlock(res)
}

func (t *TextWriter) writeBlock(res *probe.Result) error {
	var b strings.Builder
	if res.Index > 1 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s\n%d. Testing %s\n%s\n", probeRule, res.Index, res.Probe, probeRule)
	if res.Vulnerable {
		kind := "PoC link which can be used directly via browser"
		if strings.HasPrefix(res.PoC, "curl ") {
			kind = "PoC curl command which can be used from terminal"
		}
		fmt.Fprintf(&b, "API key is %s for %s! Here is the %s:\n%s\n",
			t.paint(colorVulnRed, "vulnerable"), res.Probe, kind, res.PoC)
	} else {
		fmt.Fprintf(&b, "API key is not vulnerable for %s.\nReason: %s\n", res.Probe, res.Reason)
	}
	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *TextWriter) writeBatchLine(res *probe.Result) error {
	if res.Probe != t.lastProbe {
		t.lastProbe = res.Probe
		if _, err := fmt.Fprintf(t.w, "\n[%d/%d] Testing %s\n", res.Index, t.total, res.Probe); err != nil {
			return err
		}
	}
	label := runewidth.FillRight(report.KeyLabel(res.Key), report.MaxKeyLabel+3)
	var status string
	switch {
	case res.Vulnerable:
		status = t.paint(colorVulnRed, "VULNERABLE")
	case res.Error != "":
		status = "error: " + truncate(res.Error, reasonMax)
	default:
		status = "not vulnerable: " + truncate(res.Reason, reasonMax)
	}
	_, err := fmt.Fprintf(t.w, "  %s  %s\n", label, status)
	return err
}

func (t *TextWriter) WriteFooter(rep *report.Report) error {
	if t.batch {
		return RenderMatrix(t.w, rep, t.noColor)
	}
	return t.writeCostTable(rep)
}

func (t *TextWriter) writeCostTable(rep *report.Report) error {
	var costs []probe.Cost
	if keys := rep.Keys(); len(keys) > 0 {
		costs = rep.Costs(keys[0])
	}

	var b strings.Builder
	b.WriteString("\n" + tableRule + "\n")
	fmt.Fprintf(&b, "  %s|| Cost Table/Reference to Exploit:\n", runewidth.FillRight("Results", costColumn))
	b.WriteString(tableRule + "\n")
	if len(costs) == 0 {
		b.WriteString("- No vulnerable endpoints found\n")
	}
	for _, c := range costs {
		fmt.Fprintf(&b, "- %s|| %s\n", runewidth.FillRight(c.API, costColumn), c.Price)
	}
	b.WriteString(tableRule + "\n")
	b.WriteString("Reference for up-to-date pricing:\n")
	for _, ref := range catalog.PricingReferences {
		b.WriteString(ref + "\n")
	}
	b.WriteString(tableRule + "\n")
	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *TextWriter) Close() error {
	if closer, ok := t.w.(io.Closer); ok && t.w != os.Stdout {
		return closer.Close()
	}
	return nil
}

func (t *TextWriter) paint(color, s string) string {
	if t.noColor {
		return s
	}
	return color + s + colorReset
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, n, "...")
}
