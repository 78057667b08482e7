package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/maxvaer/gmapsprobe/internal/catalog"
	"github.com/maxvaer/gmapsprobe/internal/config"
	"github.com/maxvaer/gmapsprobe/internal/hook"
	"github.com/maxvaer/gmapsprobe/internal/jscheck"
	"github.com/maxvaer/gmapsprobe/internal/keylist"
	"github.com/maxvaer/gmapsprobe/internal/output"
	"github.com/maxvaer/gmapsprobe/internal/probe"
	"github.com/maxvaer/gmapsprobe/internal/report"
	"github.com/maxvaer/gmapsprobe/internal/scanner"
	"github.com/maxvaer/gmapsprobe/pkg/version"
)

// streams are the terminal handles a scan talks to. in is shared by every
// prompt so buffered input is never lost between them.
type streams struct {
	in  *bufio.Reader
	out io.Writer
	err io.Writer
}

// Run executes a full scan over the built-in catalog: one key from
// --api-key or the prompt, or every key from --list.
func Run(ctx context.Context, opts *config.Options) error {
	_, err := run(ctx, opts, catalog.All(), streams{in: bufio.NewReader(os.Stdin), out: os.Stdout, err: os.Stderr})
	return err
}

func run(ctx context.Context, opts *config.Options, probes []probe.Definition, st streams) (*report.Report, error) {
	// 1. Resolve keys.
	keys, err := resolveKeys(opts, st)
	if err != nil {
		return nil, err
	}
	batch := opts.Batch()

	// 2. Logger and requester.
	logger := newLogger(opts.Debug, st.err)
	req, err := scanner.NewRequester(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("creating requester: %w", err)
	}
	req.SetRedactor(func(s string) string {
		for _, k := range keys {
			s = probe.Redact(s, k)
		}
		return s
	})

	// 3. Report and writers.
	names := make([]string, len(probes))
	for i, p := range probes {
		names[i] = p.Name
	}
	rep := report.New(names, keys)

	color := !opts.NoColor && isTerminal(st.out)
	out, console, err := createWriters(opts, st.out, color)
	if err != nil {
		return nil, fmt.Errorf("creating output writer: %w", err)
	}
	defer out.Close()

	if !opts.Quiet {
		printBanner(st.err, opts, len(keys), len(probes), color && isTerminal(st.err))
	}
	header := output.Header{Batch: batch, Keys: keys, Probes: len(probes)}
	if !opts.Quiet {
		header.Proxy = opts.Proxy
	}
	if err := out.WriteHeader(header); err != nil {
		return nil, err
	}

	// 4. Hook runner.
	var hookRunner *hook.Runner
	if opts.OnVulnerableCmd != "" {
		hookRunner = hook.NewRunner(opts.OnVulnerableCmd, opts.Quiet)
	}

	// 5. Work items in sequential order: probe-major, keys inner.
	items := make([]scanner.WorkItem, 0, len(probes)*len(keys))
	for _, def := range probes {
		for _, key := range keys {
			items = append(items, scanner.WorkItem{Index: len(items), Request: def.Request(key)})
		}
	}

	progress := output.NewProgress(st.err, len(items), batch && !opts.Quiet && isTerminal(st.err))
	progress.Start()
	defer progress.Stop()

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerCfg := scanner.WorkerConfig{
		Threads:   opts.Threads,
		Throttler: scanner.NewThrottler(opts.Delay, opts.AdaptiveThrottle, logger),
	}
	results := scanner.RunWorkerPool(scanCtx, req, items, workerCfg)

	// 6. Reassemble completion-ordered results into scan order.
	pending := make(map[int]scanner.ScanResult)
	next := 0
	var scanErr error

	emit := func(sr scanner.ScanResult) error {
		pi, ki := sr.Index/len(keys), sr.Index%len(keys)
		def, key := probes[pi], keys[ki]

		var res probe.Result
		if sr.Error != nil {
			if !batch {
				return fmt.Errorf("%s: %w", def.Name, sr.Error)
			}
			res = def.Failed(pi+1, key, sr.Error)
		} else {
			res = def.Classify(pi+1, key, sr.Response)
		}
		if err := rep.Add(res); err != nil {
			return err
		}

		progress.Increment(res.Vulnerable, res.Error != "")
		progress.ClearLine()
		err := out.WriteResult(&res)
		progress.Redraw()
		if err != nil {
			return err
		}

		if res.Vulnerable && hookRunner != nil {
			hookRunner.Run(ctx, &res)
		}
		return nil
	}

	for sr := range results {
		if scanErr != nil {
			continue // drain
		}
		pending[sr.Index] = sr
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if err := emit(ready); err != nil {
				scanErr = err
				cancel()
				break
			}
		}
	}
	progress.Stop()

	if scanErr != nil {
		return rep, scanErr
	}
	if !rep.Complete() {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("scan interrupted: %w", err)
		}
		return rep, errors.New("scan ended before all probes completed")
	}

	// 7. Footer.
	rep.Finish()
	if err := out.WriteFooter(rep); err != nil {
		return rep, err
	}

	// 8. Manual JavaScript API check.
	if !batch && console && !opts.Quiet && !opts.NoJSCheck {
		s := &jscheck.Session{In: st.in, Out: st.out, Path: opts.JSCheckFile}
		if s.Path == "" {
			s.Path = config.DefaultJSCheckFile
		}
		if err := s.Run(keys[0]); err != nil {
			return rep, fmt.Errorf("javascript api check: %w", err)
		}
	}

	if !opts.Quiet {
		fmt.Fprintf(st.err, "[+] Scan finished in %s\n", rep.Finished.Sub(rep.Started).Round(time.Millisecond))
	}
	return rep, nil
}

// resolveKeys returns the keys to scan from --list, --api-key, or the prompt.
func resolveKeys(opts *config.Options, st streams) ([]string, error) {
	if opts.APIKey != "" && opts.KeyList != "" {
		return nil, ErrConflict
	}
	if opts.KeyList != "" {
		return keylist.Load(opts.KeyList)
	}
	if opts.APIKey != "" {
		return []string{opts.APIKey}, nil
	}
	key, err := promptKey(st.in, st.out)
	if err != nil {
		return nil, err
	}
	return []string{key}, nil
}

// createWriters builds the writer chain. The console text writer is used
// unless a structured format goes to stdout; a structured or text report
// file is added when --output is set. console reports whether stdout
// carries the text report.
func createWriters(opts *config.Options, stdout io.Writer, color bool) (output.Writer, bool, error) {
	structuredStdout := opts.OutputFile == "" && opts.OutputFormat != "" && opts.OutputFormat != "text"

	var writers []output.Writer
	if !structuredStdout {
		writers = append(writers, output.NewTextWriterTo(stdout, !color))
	}
	if opts.OutputFile != "" || structuredStdout {
		w, err := createFormatWriter(opts)
		if err != nil {
			return nil, false, err
		}
		writers = append(writers, w)
	}
	return output.Multi(writers...), !structuredStdout, nil
}

func createFormatWriter(opts *config.Options) (output.Writer, error) {
	switch opts.OutputFormat {
	case "json":
		return output.NewJSONWriter(opts.OutputFile)
	case "csv":
		return output.NewCSVWriter(opts.OutputFile)
	case "yaml":
		return output.NewYAMLWriter(opts.OutputFile)
	default:
		return output.NewTextWriter(opts.OutputFile, true)
	}
}

func newLogger(debug bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printBanner(w io.Writer, opts *config.Options, keyCount, probeCount int, color bool) {
	const (
		cyan  = "\033[36m"
		dim   = "\033[2m"
		reset = "\033[0m"
	)
	c, d, rs := cyan, dim, reset
	if !color {
		c, d, rs = "", "", ""
	}

	mode := "single key"
	if opts.Batch() {
		mode = fmt.Sprintf("batch (%d keys)", keyCount)
	}

	fmt.Fprintf(w, "\n%s  gmapsprobe%s %sv%s%s\n", c, rs, d, version.Version, rs)
	fmt.Fprintf(w, "%s  Google Maps API key exposure scanner%s\n", d, rs)
	fmt.Fprintf(w, "%s  ──────────────────────────────────────%s\n", d, rs)
	fmt.Fprintf(w, "  %sMode:%s       %s\n", d, rs, mode)
	fmt.Fprintf(w, "  %sEndpoints:%s  %d\n", d, rs, probeCount)
	fmt.Fprintf(w, "  %sThreads:%s    %d\n", d, rs, opts.Threads)
	fmt.Fprintf(w, "  %sTimeout:%s    %s\n", d, rs, opts.Timeout)
	if opts.Proxy != "" {
		fmt.Fprintf(w, "  %sProxy:%s      %s\n", d, rs, opts.Proxy)
	}
	fmt.Fprintf(w, "%s  ──────────────────────────────────────%s\n\n", d, rs)
}
