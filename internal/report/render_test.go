package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"sbomstat/internal/report"
	"sbomstat/internal/resolver"
)

func sampleFrequency() *report.Frequency {
	f := report.NewFrequency("Main packages", "entries")
	f.Add("openssl")
	f.Add("bash")
	f.Add("openssl")
	f.Processed = 3
	return f
}

func sampleResult() resolver.Result {
	return resolver.Result{
		Hits:   1,
		Misses: 1,
		Rows: []resolver.Row{
			{Source: "cpe:/a:apache:struts:2.3.15", Targets: []string{"cpe:/a:apache:struts", "cpe:/a:apache:struts:2.3.15"}},
			{Source: "cpe:/a:apache:tomcat:9", Targets: []string{}},
		},
	}
}

func TestFrequencyEntriesSorted(t *testing.T) {
	f := sampleFrequency()
	assert.Equal(t, []report.Entry{{Key: "bash", Count: 1}, {Key: "openssl", Count: 2}}, f.Entries())
	assert.Equal(t, []string{"bash", "openssl"}, f.Keys())
	assert.Equal(t, 2, f.Len())

	var zero report.Frequency
	zero.Add("x")
	assert.Equal(t, 1, zero.Counts["x"])
}

func TestRenderFrequencyText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.RenderFrequency(&buf, sampleFrequency(), report.FormatText))
	assert.Equal(t, "2 unique entries\nbash: 1\nopenssl: 2\n", buf.String())
}

func TestRenderFrequencyTextKeysOnly(t *testing.T) {
	f := report.NewFrequency("Document names", "names")
	f.KeysOnly = true
	f.Add("b")
	f.Add("a")
	var buf bytes.Buffer
	require.NoError(t, report.RenderFrequency(&buf, f, report.FormatText))
	assert.Equal(t, "2 unique names\na\nb\n", buf.String())
}

func TestRenderFrequencyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.RenderFrequency(&buf, sampleFrequency(), report.FormatTable))
	out := buf.String()
	assert.Contains(t, strings.ToLower(out), "main packages")
	assert.Contains(t, out, "openssl")
	assert.Contains(t, strings.ToLower(out), "2 unique entries")
}

func TestRenderFrequencyCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.RenderFrequency(&buf, sampleFrequency(), report.FormatCSV))
	assert.Equal(t, "key,count\nbash,1\nopenssl,2\n", buf.String())
}

func TestRenderFrequencyJSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.RenderFrequency(&buf, sampleFrequency(), report.FormatJSON))
	var decoded struct {
		Unique    int            `json:"unique"`
		Processed int            `json:"processed"`
		Entries   []report.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Unique)
	assert.Equal(t, 3, decoded.Processed)
	assert.Len(t, decoded.Entries, 2)

	buf.Reset()
	require.NoError(t, report.RenderFrequency(&buf, sampleFrequency(), report.FormatYAML))
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &y))
	assert.Equal(t, "Main packages", y["title"])
}

func TestRenderMatchText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.RenderMatch(&buf, sampleResult(), report.FormatText))
	want := strings.Join([]string{
		"VEX,Num,SBOMs",
		`"cpe:/a:apache:struts:2.3.15",2,"[cpe:/a:apache:struts cpe:/a:apache:struts:2.3.15]"`,
		`"cpe:/a:apache:tomcat:9",0,"[]"`,
		"Hits: 1, Misses: 1",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestRenderMatchCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.RenderMatch(&buf, sampleResult(), report.FormatCSV))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "VEX,Num,SBOMs", lines[0])
	assert.Equal(t, "cpe:/a:apache:tomcat:9,0,[]", lines[2])
}

func TestRenderMatchTableIncludesSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.RenderMatch(&buf, sampleResult(), report.FormatTable))
	assert.True(t, strings.HasSuffix(buf.String(), "Hits: 1, Misses: 1\n"))
}

func TestParseFormat(t *testing.T) {
	f, err := report.ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, report.FormatJSON, f)
	f, err = report.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, report.FormatTable, f)
	_, err = report.ParseFormat("xml")
	assert.Error(t, err)
}
