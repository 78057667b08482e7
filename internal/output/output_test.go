package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/maxvaer/gmapsprobe/internal/probe"
	"github.com/maxvaer/gmapsprobe/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var staticmapCost = probe.Cost{API: "Staticmap", Price: "$2 per 1000 requests"}

func batchReport(t *testing.T) *report.Report {
	t.Helper()
	keys := []string{"AIzaKEY-000000000000000001", "key2", "AIzaKEY-000000000000000003"}
	rep := report.New([]string{"Staticmap API", "Geocode API"}, keys)
	for i, k := range keys {
		vuln := i != 1
		res := probe.Result{Index: 1, Probe: "Staticmap API", Key: k, Vulnerable: vuln}
		if vuln {
			res.Costs = []probe.Cost{staticmapCost}
		} else {
			res.Reason = "denied"
		}
		require.NoError(t, rep.Add(res))
	}
	for _, k := range keys {
		require.NoError(t, rep.Add(probe.Result{Index: 2, Probe: "Geocode API", Key: k, Reason: "denied"}))
	}
	rep.Finish()
	return rep
}

func TestRenderMatrix(t *testing.T) {
	rep := batchReport(t)
	var buf bytes.Buffer
	require.NoError(t, RenderMatrix(&buf, rep, true))
	out := buf.String()

	assert.Contains(t, out, "AIzaKEY-000000000000...")
	assert.NotContains(t, out, "AIzaKEY-000000000000000001")
	assert.Contains(t, out, "key2")

	geo := strings.Index(out, "Geocode API")
	static := strings.Index(out, "Staticmap API")
	require.True(t, geo >= 0 && static >= 0)
	assert.Less(t, geo, static, "rows must be sorted alphabetically")

	assert.Contains(t, out, "AIzaKEY-000000000000...: 1/2 vulnerable")
	assert.Contains(t, out, "key2: 0/2 vulnerable")

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Staticmap API") {
			assert.Equal(t, []string{"Staticmap", "API", "VULN", "safe", "VULN"}, strings.Fields(line))
		}
	}
}

func TestTextWriter_SingleMode(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriterTo(&buf, true)
	require.NoError(t, w.WriteHeader(Header{Keys: []string{"K"}, Probes: 2}))

	rep := report.New([]string{"Staticmap API", "FCM API"}, []string{"K"})
	results := []probe.Result{
		{Index: 1, Probe: "Staticmap API", Key: "K", Vulnerable: true, PoC: "https://maps.example.test/?key=K", Costs: []probe.Cost{staticmapCost}},
		{Index: 2, Probe: "FCM API", Key: "K", Reason: "The request was missing an Authentication Key."},
	}
	for i := range results {
		require.NoError(t, rep.Add(results[i]))
		require.NoError(t, w.WriteResult(&results[i]))
	}
	require.NoError(t, w.WriteFooter(rep))
	out := buf.String()

	assert.Contains(t, out, "1. Testing Staticmap API")
	assert.Contains(t, out, "API key is vulnerable for Staticmap API! Here is the PoC link which can be used directly via browser:\nhttps://maps.example.test/?key=K")
	assert.Contains(t, out, "API key is not vulnerable for FCM API.\nReason: The request was missing an Authentication Key.")
	assert.Contains(t, out, "- Staticmap")
	assert.Contains(t, out, "|| $2 per 1000 requests")
	assert.Contains(t, out, "https://cloud.google.com/maps-platform/pricing")
	assert.NotContains(t, out, "\033[")
}

func TestTextWriter_BatchMode(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriterTo(&buf, true)
	require.NoError(t, w.WriteHeader(Header{Batch: true, Keys: []string{"k1", "k2"}, Probes: 1}))
	require.NoError(t, w.WriteResult(&probe.Result{Index: 1, Probe: "Staticmap API", Key: "k1", Vulnerable: true}))
	require.NoError(t, w.WriteResult(&probe.Result{Index: 1, Probe: "Staticmap API", Key: "k2", Reason: "request failed: timeout", Error: "timeout"}))
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, "Testing Staticmap API"), "probe header printed once")
	assert.Contains(t, out, "VULNERABLE")
	assert.Contains(t, out, "error: timeout")
}

func TestJSONWriter(t *testing.T) {
	path := t.TempDir() + "/report.json"
	w, err := NewJSONWriter(path)
	require.NoError(t, err)
	rep := batchReport(t)
	require.NoError(t, w.WriteHeader(Header{Batch: true}))
	require.NoError(t, w.WriteFooter(rep))
	require.NoError(t, w.Close())

	var doc document
	data := readFile(t, path)
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, rep.ID, doc.ID)
	assert.Equal(t, "batch", doc.Mode)
	assert.Len(t, doc.Results, 6)
	require.Len(t, doc.Summary, 3)
	assert.Equal(t, 1, doc.Summary[0].Vulnerable)
	assert.Equal(t, 2, doc.Summary[0].Attempted)
}

func TestYAMLWriter(t *testing.T) {
	path := t.TempDir() + "/report.yaml"
	w, err := NewYAMLWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader(Header{Batch: true}))
	require.NoError(t, w.WriteFooter(batchReport(t)))
	require.NoError(t, w.Close())

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(readFile(t, path), &doc))
	assert.Equal(t, "batch", doc["mode"])
	assert.Len(t, doc["results"], 6)
}

func TestCSVWriter(t *testing.T) {
	path := t.TempDir() + "/report.csv"
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader(Header{}))
	require.NoError(t, w.WriteResult(&probe.Result{Probe: "Staticmap API", Key: "K", Vulnerable: true, StatusCode: 200, Costs: []probe.Cost{staticmapCost}}))
	require.NoError(t, w.WriteFooter(nil))
	require.NoError(t, w.Close())

	rows, err := csv.NewReader(bytes.NewReader(readFile(t, path))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Staticmap API", "K", "true", "200", "", "", "Staticmap: $2 per 1000 requests"}, rows[1])
}
