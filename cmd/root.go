package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/maxvaer/gmapsprobe/internal/config"
	"github.com/maxvaer/gmapsprobe/internal/runner"
	"github.com/maxvaer/gmapsprobe/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"api-key", "list"}},
	{"RATE-LIMIT", []string{"threads", "timeout", "delay", "adaptive-throttle"}},
	{"HTTP", []string{"proxy", "user-agent"}},
	{"OUTPUT", []string{"output", "format", "quiet", "no-color", "on-vulnerable"}},
	{"DEBUG", []string{"no-js-check", "debug"}},
}

var outputFormats = []string{"text", "json", "csv", "yaml"}

func newRootCmd(opts *config.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gmapsprobe [-a <key> | -l <file>] [flags]",
		Short:   "Check which Google Maps Platform APIs a key can call",
		Version: version.Version,
		Long: `gmapsprobe tests a Google Maps Platform API key (or a list of keys)
against every Maps endpoint it knows about and reports which ones accept
the key, together with a proof of concept and the billing cost of abuse.`,
		Example: `  gmapsprobe -a AIzaSy...
  gmapsprobe -a AIzaSy... -p
  gmapsprobe -a AIzaSy... -p http://127.0.0.1:8081
  gmapsprobe -l keys.txt -t 20
  gmapsprobe -l keys.txt -o report.json --format json
  gmapsprobe -l keys.txt --on-vulnerable "notify-send {probe} {key}"`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.APIKey != "" && opts.KeyList != "" {
				return runner.ErrConflict
			}
			if !validFormat(opts.OutputFormat) {
				return fmt.Errorf("--format must be one of: %s", strings.Join(outputFormats, ", "))
			}
			if opts.Threads < 1 {
				return fmt.Errorf("--threads must be at least 1")
			}
			if opts.Timeout <= 0 {
				return fmt.Errorf("--timeout must be positive")
			}
			opts.JSCheckFile = config.DefaultJSCheckFile
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runner.Run(ctx, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()

	// Target
	f.StringVarP(&opts.APIKey, "api-key", "a", "", "Google Maps API key to test")
	f.StringVarP(&opts.KeyList, "list", "l", "", "File with API keys (newline or comma separated)")

	// Performance
	f.IntVarP(&opts.Threads, "threads", "t", 10, "Number of concurrent requests")
	f.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.DurationVar(&opts.Delay, "delay", 0, "Delay between requests per thread")
	f.BoolVar(&opts.AdaptiveThrottle, "adaptive-throttle", false, "Auto back-off on 429/503 responses")

	// HTTP
	f.StringVarP(&opts.Proxy, "proxy", "p", "", "Send every probe through this proxy (bare flag: "+config.DefaultProxy+")")
	f.Lookup("proxy").NoOptDefVal = config.DefaultProxy
	f.StringVar(&opts.UserAgent, "user-agent", "", "Custom User-Agent string")

	// Output
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Output file path")
	f.StringVar(&opts.OutputFormat, "format", "text", "Output format: "+strings.Join(outputFormats, ", "))
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Minimal output")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	f.StringVar(&opts.OnVulnerableCmd, "on-vulnerable", "", "Shell command per vulnerable result; {probe} {key} {poc} {status} expand to quoted words, JSON on stdin")

	// Misc
	f.BoolVar(&opts.NoJSCheck, "no-js-check", false, "Skip the manual JavaScript API check")
	f.BoolVar(&opts.Debug, "debug", false, "Log every request (keys redacted)")

	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := cmd.ErrOrStderr()
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})

	return cmd
}

// Execute runs the root command.
func Execute() {
	os.Exit(execute(os.Args[1:], os.Stdout))
}

func execute(args []string, stdout io.Writer) int {
	var opts config.Options
	cmd := newRootCmd(&opts)
	cmd.SetArgs(normalizeArgs(args))
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	return 0
}

// normalizeArgs rewrites "-p URL" and "--proxy URL" to "--proxy=URL".
// --proxy has an optional value, so pflag would otherwise take URL as a
// positional argument.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if (arg == "-p" || arg == "--proxy") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, "--proxy="+args[i+1])
			i++
			continue
		}
		out = append(out, arg)
	}
	return out
}

func validFormat(format string) bool {
	for _, f := range outputFormats {
		if format == f {
			return true
		}
	}
	return false
}

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	switch {
	case f.NoOptDefVal != "" && f.Value.Type() != "bool":
		left += " [" + f.Value.Type() + "]"
	case f.Value.Type() != "bool":
		left += " " + f.Value.Type()
	}

	const col = 36
	if len(left) < col {
		left += strings.Repeat(" ", col-len(left))
	}

	right := f.Usage
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf("\n  gmapsprobe %s\n  Google Maps API key exposure scanner\n\n", ver)
}
