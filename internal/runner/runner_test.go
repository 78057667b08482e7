package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/maxvaer/gmapsprobe/internal/catalog"
	"github.com/maxvaer/gmapsprobe/internal/config"
	"github.com/maxvaer/gmapsprobe/internal/probe"
)

const deniedBody = `{"error_message":"The provided API key is invalid.","error":{"code":403,"message":"API key not valid."},"errorMessage":"denied"}`

// rebase points every probe at srv, keeping the original host as the
// first path segment so handlers can still tell endpoints apart.
func rebase(defs []probe.Definition, srvURL string) []probe.Definition {
	out := make([]probe.Definition, len(defs))
	for i, d := range defs {
		d.URL = srvURL + "/" + strings.TrimPrefix(d.URL, "https://")
		out[i] = d
	}
	return out
}

func requestKey(r *http.Request) string {
	if k := r.URL.Query().Get("key"); k != "" {
		return k
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "key=")
}

func testOpts(t *testing.T) *config.Options {
	t.Helper()
	return &config.Options{
		Threads:   4,
		Timeout:   5 * time.Second,
		Quiet:     true,
		NoColor:   true,
		NoJSCheck: true,
	}
}

func testStreams(stdin string) (streams, *bytes.Buffer) {
	var out bytes.Buffer
	return streams{in: bufio.NewReader(strings.NewReader(stdin)), out: &out, err: &bytes.Buffer{}}, &out
}

func writeKeyList(t *testing.T, keys ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.txt")
	if err := os.WriteFile(path, []byte(strings.Join(keys, "\n")), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSingleKeyScan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/staticmap"):
			w.WriteHeader(200)
			fmt.Fprint(w, "\x89PNG")
		case strings.Contains(r.URL.Path, "/directions/"):
			fmt.Fprint(w, `{"error_message":"The provided API key is invalid.","routes":[],"status":"REQUEST_DENIED"}`)
		default:
			w.WriteHeader(403)
			fmt.Fprint(w, deniedBody)
		}
	}))
	defer srv.Close()

	opts := testOpts(t)
	opts.APIKey = "AIzaSINGLE"
	st, out := testStreams("")

	rep, err := run(context.Background(), opts, rebase(catalog.All(), srv.URL), st)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Complete() {
		t.Fatalf("report incomplete, missing %v", rep.Missing("AIzaSINGLE"))
	}

	static, _ := rep.Get("Staticmap API", "AIzaSINGLE")
	if !static.Vulnerable {
		t.Error("expected Staticmap to be vulnerable")
	}
	dir, _ := rep.Get("Directions API", "AIzaSINGLE")
	if dir.Vulnerable || dir.Reason != "The provided API key is invalid." {
		t.Errorf("unexpected Directions result: %+v", dir)
	}
	if rep.VulnerableCount("AIzaSINGLE") != 1 {
		t.Errorf("expected 1 vulnerable probe, got %d", rep.VulnerableCount("AIzaSINGLE"))
	}

	text := out.String()
	if !strings.Contains(text, "1. Testing Staticmap API") {
		t.Errorf("missing probe header:\n%s", text)
	}
	if !strings.Contains(text, "|| $2 per 1000 requests") {
		t.Errorf("missing cost table entry:\n%s", text)
	}
	if !strings.Contains(text, "32. Testing Maps JavaScript API") {
		t.Errorf("expected all 32 probes in output:\n%s", text)
	}
}

func TestBatchSummary(t *testing.T) {
	vulnerable := map[string]bool{"key-one": true, "key-three": true}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/staticmap") && vulnerable[requestKey(r)] {
			w.WriteHeader(200)
			return
		}
		w.WriteHeader(403)
		fmt.Fprint(w, deniedBody)
	}))
	defer srv.Close()

	opts := testOpts(t)
	opts.KeyList = writeKeyList(t, "key-one", "key-two", "key-three")
	st, out := testStreams("")

	probes := rebase(catalog.All(), srv.URL)
	rep, err := run(context.Background(), opts, probes, st)
	if err != nil {
		t.Fatal(err)
	}

	n := len(probes)
	want := map[string]string{
		"key-one":   fmt.Sprintf("key-one: 1/%d vulnerable", n),
		"key-two":   fmt.Sprintf("key-two: 0/%d vulnerable", n),
		"key-three": fmt.Sprintf("key-three: 1/%d vulnerable", n),
	}
	for key, line := range want {
		if !strings.Contains(out.String(), line) {
			t.Errorf("missing summary %q for %s in:\n%s", line, key, out.String())
		}
	}
	if len(rep.Results()) != 3*n {
		t.Errorf("expected %d results, got %d", 3*n, len(rep.Results()))
	}
}

func TestBatchTransportErrorRecordedAsSafe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestKey(r) == "key-broken" {
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("server does not support hijacking")
				return
			}
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	opts := testOpts(t)
	opts.KeyList = writeKeyList(t, "key-ok", "key-broken")
	st, out := testStreams("")

	probes := rebase(catalog.All()[:3], srv.URL)
	rep, err := run(context.Background(), opts, probes, st)
	if err != nil {
		t.Fatalf("batch mode must not fail on transport errors: %v", err)
	}
	for _, p := range probes {
		res, ok := rep.Get(p.Name, "key-broken")
		if !ok {
			t.Fatalf("no result for %s", p.Name)
		}
		if res.Vulnerable || res.Error == "" || !strings.HasPrefix(res.Reason, "request failed: ") {
			t.Errorf("%s: expected recorded error, got %+v", p.Name, res)
		}
	}
	if !strings.Contains(out.String(), "key-ok: 3/3 vulnerable") {
		t.Errorf("unexpected summary:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "key-broken: 0/3 vulnerable") {
		t.Errorf("unexpected summary:\n%s", out.String())
	}
}

func TestSingleKeyTransportErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/streetview") {
			hj := w.(http.Hijacker)
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	opts := testOpts(t)
	opts.APIKey = "AIzaSINGLE"
	st, out := testStreams("")

	_, err := run(context.Background(), opts, rebase(catalog.All(), srv.URL), st)
	if err == nil {
		t.Fatal("expected transport error to abort single-key scan")
	}
	if !strings.Contains(err.Error(), "Streetview API") {
		t.Errorf("error should name the probe, got %v", err)
	}
	if !strings.Contains(out.String(), "1. Testing Staticmap API") {
		t.Error("probes before the failure should still be printed")
	}
	if strings.Contains(out.String(), "3. Testing") || strings.Contains(out.String(), "Cost Table") {
		t.Errorf("nothing after the failure should be printed:\n%s", out.String())
	}
}

func TestConcurrentScanKeepsSequentialOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(rand.Intn(15)) * time.Millisecond)
		w.WriteHeader(403)
		fmt.Fprint(w, deniedBody)
	}))
	defer srv.Close()

	probes := rebase(catalog.All(), srv.URL)
	keys := []string{"k1", "k2", "k3"}

	var first string
	for attempt := 0; attempt < 2; attempt++ {
		opts := testOpts(t)
		opts.Threads = 16
		opts.KeyList = writeKeyList(t, keys...)
		st, out := testStreams("")

		rep, err := run(context.Background(), opts, probes, st)
		if err != nil {
			t.Fatal(err)
		}
		results := rep.Results()
		for i, res := range results {
			wantProbe := probes[i/len(keys)].Name
			wantKey := keys[i%len(keys)]
			if res.Probe != wantProbe || res.Key != wantKey {
				t.Fatalf("result %d = (%s, %s), want (%s, %s)", i, res.Probe, res.Key, wantProbe, wantKey)
			}
		}
		if attempt == 0 {
			first = out.String()
		} else if out.String() != first {
			t.Error("repeated runs over identical responses produced different output")
		}
	}
}

func TestJSONReportFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
		fmt.Fprint(w, deniedBody)
	}))
	defer srv.Close()

	opts := testOpts(t)
	opts.APIKey = "AIzaJSON"
	opts.OutputFormat = "json"
	opts.OutputFile = filepath.Join(t.TempDir(), "report.json")
	st, _ := testStreams("")

	if _, err := run(context.Background(), opts, rebase(catalog.All()[:2], srv.URL), st); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(opts.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"mode": "single"`) || !strings.Contains(string(data), `"probe": "Streetview API"`) {
		t.Errorf("unexpected report:\n%s", data)
	}
}

func TestJSCheckPromptAfterSingleScan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
	}))
	defer srv.Close()

	opts := testOpts(t)
	opts.APIKey = "AIzaJS"
	opts.Quiet = false
	opts.NoJSCheck = false
	opts.JSCheckFile = filepath.Join(t.TempDir(), "jsapi_test.html")
	st, out := testStreams("n\n")

	if _, err := run(context.Background(), opts, rebase(catalog.All()[:1], srv.URL), st); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "manual tests for Javascript API") {
		t.Errorf("expected JS check prompt:\n%s", out.String())
	}
}

func TestPromptedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestKey(r) != "AIzaPROMPTED" {
			t.Errorf("unexpected key %q", requestKey(r))
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	opts := testOpts(t)
	st, out := testStreams("  AIzaPROMPTED \n")
	rep, err := run(context.Background(), opts, rebase(catalog.All()[:1], srv.URL), st)
	if err != nil {
		t.Fatal(err)
	}
	if got := rep.Keys(); len(got) != 1 || got[0] != "AIzaPROMPTED" {
		t.Errorf("keys = %v", got)
	}
	if !strings.Contains(out.String(), "Please enter the Google Maps API key") {
		t.Error("expected prompt text")
	}
}

func TestPromptedKeyThenJSCheckShareStdin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
	}))
	defer srv.Close()

	opts := testOpts(t)
	opts.Quiet = false
	opts.NoJSCheck = false
	opts.JSCheckFile = filepath.Join(t.TempDir(), "jsapi_test.html")
	st, out := testStreams("AIzaKEY\ny\n\n")

	if _, err := run(context.Background(), opts, rebase(catalog.All()[:1], srv.URL), st); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "jsapi_test.html file is created") {
		t.Errorf("piped Y answer was not seen by the JS check:\n%s", out.String())
	}
	if _, err := os.Stat(opts.JSCheckFile); !os.IsNotExist(err) {
		t.Error("JS check page should be removed after confirmation")
	}
}

func TestCancelledScanIsIncomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	opts := testOpts(t)
	opts.KeyList = writeKeyList(t, "k1", "k2")
	st, out := testStreams("")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := run(ctx, opts, rebase(catalog.All(), srv.URL), st)
	if err == nil || !strings.Contains(err.Error(), "scan interrupted") {
		t.Fatalf("expected interruption error, got %v", err)
	}
	if rep.Complete() {
		t.Error("cancelled scan should leave cells without results")
	}
	if strings.Contains(out.String(), "Summary:") {
		t.Error("no summary should be rendered for an incomplete scan")
	}
}

func TestResolveKeys(t *testing.T) {
	st, _ := testStreams("")

	_, err := resolveKeys(&config.Options{APIKey: "a", KeyList: "f.txt"}, st)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}

	_, err = resolveKeys(&config.Options{KeyList: filepath.Join(t.TempDir(), "missing.txt")}, st)
	if err == nil {
		t.Error("expected error for missing key list")
	}

	_, err = resolveKeys(&config.Options{}, st)
	if err == nil {
		t.Error("expected error for empty prompt input")
	}
}
