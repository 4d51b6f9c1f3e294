package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sbomstat/internal/config"
	"sbomstat/internal/pipeline"
	"sbomstat/internal/testsupport"
)

func seedCorpus(t *testing.T, env *cliTestEnv) {
	t.Helper()
	env.addSBOM(t, "a.json.gz", testsupport.SPDXDocument(t, "openssl", []string{"SPDXRef-a"},
		testsupport.SPDXPackage{ID: "SPDXRef-a", Name: "openssl", CPEs: []string{"cpe:/a:redhat:openssl:3"}}))
	env.addSBOM(t, "b.json.gz", testsupport.SPDXDocument(t, "openssl", []string{"SPDXRef-b"},
		testsupport.SPDXPackage{ID: "SPDXRef-b", Name: "openssl", CPEs: []string{"cpe:/a:redhat:openssl:3"}}))
	env.addSBOM(t, "c.json.gz", testsupport.SPDXDocument(t, "struts", []string{"SPDXRef-c"},
		testsupport.SPDXPackage{ID: "SPDXRef-c", Name: "struts", CPEs: []string{"cpe:/a:apache:struts:2.5"}}))
}

func TestNamesCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCorpus(t, env)

	out, _, err := runCLI(t, []string{"--format", "text", "names"}, env.configPath)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	requireContains(t, out, "Processed 3 SBOMs\n")
	requireContains(t, out, "2 unique names\nopenssl\nstruts\n")
}

func TestMainPackagesCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCorpus(t, env)

	out, _, err := runCLI(t, []string{"--format", "text", "main-packages"}, env.configPath)
	if err != nil {
		t.Fatalf("main-packages: %v", err)
	}
	requireContains(t, out, "openssl: 2\n")
	requireContains(t, out, "struts: 1\n")
}

func TestMainCPECommand(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCorpus(t, env)

	out, _, err := runCLI(t, []string{"--format", "text", "main-cpe"}, env.configPath)
	if err != nil {
		t.Fatalf("main-cpe: %v", err)
	}
	requireContains(t, out, "cpe:/a:redhat:openssl:3: 2\n")
	requireContains(t, out, "cpe:/a:apache:struts:2.5: 1\n")
}

func TestMainCPETitlesRequiresDictionary(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCorpus(t, env)

	_, _, err := runCLI(t, []string{"main-cpe", "--titles"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing dictionary to fail")
	}
	requireContains(t, err.Error(), "load cpe dictionary")
}

func TestMainCPETitlesCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCorpus(t, env)
	testsupport.WriteFile(t, env.cfg.Paths.Dictionary, []byte(`<?xml version="1.0" encoding="UTF-8"?>
<cpe-list xmlns="http://cpe.mitre.org/dictionary/2.0">
  <cpe-item name="cpe:/a:redhat:openssl:3">
    <title xml:lang="en-US">Red Hat OpenSSL 3</title>
  </cpe-item>
</cpe-list>
`))

	out, _, err := runCLI(t, []string{"--format", "text", "main-cpe", "--titles"}, env.configPath)
	if err != nil {
		t.Fatalf("main-cpe --titles: %v", err)
	}
	requireContains(t, out, "Red Hat OpenSSL 3: 2\n")
}

func TestAdvisoryCPECommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addAdvisory(t, "2024/rhsa-2024_0001.json", advisoryJSON("RHSA-2024:0001", "cpe:/a:apache:struts:2", "cpe:/a:redhat:openssl"))
	env.addAdvisory(t, "2024/rhsa-2024_0002.json", advisoryJSON("RHSA-2024:0002", "cpe:/a:apache:struts:2"))

	out, _, err := runCLI(t, []string{"--format", "text", "advisory-cpe"}, env.configPath)
	if err != nil {
		t.Fatalf("advisory-cpe: %v", err)
	}
	requireContains(t, out, "Processed 2 advisories\n")
	requireContains(t, out, "cpe:/a:apache:struts:2: 2\n")
	requireContains(t, out, "cpe:/a:redhat:openssl: 1\n")
}

func TestResolveCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCorpus(t, env)
	env.addAdvisory(t, "rhsa-1.json", advisoryJSON("RHSA-1", "cpe:/a:redhat:openssl", "cpe:/a:apache:tomcat:9"))

	out, _, err := runCLI(t, []string{"--format", "text", "resolve"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "Processed 1 advisories\nProcessed 3 SBOMs\n")
	requireContains(t, out, "VEX,Num,SBOMs\n")
	requireContains(t, out, `"cpe:/a:redhat:openssl",1,"[cpe:/a:redhat:openssl:3]"`)
	requireContains(t, out, `"cpe:/a:apache:tomcat:9",0,"[]"`)
	if !strings.HasSuffix(out, "Hits: 1, Misses: 1\n") {
		t.Fatalf("unexpected tail: %q", out)
	}
}

func TestMachineFormatKeepsSummaryOffStdout(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCorpus(t, env)

	out, stderr, err := runCLI(t, []string{"--format", "json", "names"}, env.configPath)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	requireContains(t, stderr, "Processed 3 SBOMs")
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
}

func TestStrictAbortsOnCorruptDocument(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCorpus(t, env)
	env.addSBOM(t, "broken.json.gz", []byte("{not json"))

	out, _, err := runCLI(t, []string{"--format", "text", "names"}, env.configPath)
	if err != nil {
		t.Fatalf("lenient names: %v", err)
	}
	requireContains(t, out, "Skipped 1 unreadable or undecodable files")

	_, _, err = runCLI(t, []string{"--strict", "names"}, env.configPath)
	if !errors.Is(err, pipeline.ErrAborted) {
		t.Fatalf("expected aborted run, got %v", err)
	}
}

func TestSinksRecordRun(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSQLite(), testsupport.WithMetrics())
	seedCorpus(t, env)

	if _, _, err := runCLI(t, []string{"names"}, env.configPath); err != nil {
		t.Fatalf("names: %v", err)
	}

	metrics, err := os.ReadFile(env.cfg.Report.MetricsPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	requireContains(t, string(metrics), `sbomstat_report_unique_keys{report="names"} 2`)

	out, _, err := runCLI(t, []string{"runs", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	var runs []runView
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].Kind != "names" || runs[0].Processed != 3 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestRunsRequiresDatabase(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"runs"}, env.configPath)
	if err == nil {
		t.Fatal("expected error without sqlite path")
	}
}

func TestMatchCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"match", "cpe:/a:redhat:openssl", "cpe:2.3:a:redhat:openssl:3:*:*:*:*:*:*:*"}, "")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	requireContains(t, out, "A: cpe:/a:redhat:openssl\n")
	if !strings.HasSuffix(out, "Match\n") {
		t.Fatalf("expected match, got %q", out)
	}

	out, _, err = runCLI(t, []string{"match", "cpe:/a:redhat:openssl:3", "cpe:/a:redhat:openssl:1.1"}, "")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	requireContains(t, out, "No match: first mismatch on version")

	if _, _, err := runCLI(t, []string{"match", "not-a-cpe", "cpe:/a:x"}, ""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}

func TestConfigShowAppliesFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--workers", "7", "config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "workers = 7")

	if _, _, err := runCLI(t, []string{"--format", "xml", "config", "show"}, env.configPath); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected invalid format, got %v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "SBOM directory")

	if err := os.RemoveAll(env.cfg.Paths.SBOMDir); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"check"}, env.configPath); err == nil {
		t.Fatal("expected failing check")
	}
}
