package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"sbomstat/internal/testsupport"
)

func TestCheckReadableDirectory_OK(t *testing.T) {
	result := CheckReadableDirectory("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckReadableDirectory_NotExist(t *testing.T) {
	result := CheckReadableDirectory("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckReadableDirectory_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckReadableDirectory("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "dict.xml.gz")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckReadableFile("dict", f); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckReadableFile("dict", dir); result.Passed {
		t.Fatal("expected failure for directory")
	}
	if result := CheckReadableFile("dict", filepath.Join(dir, "missing")); result.Passed {
		t.Fatal("expected failure for missing file")
	}
}

func TestCheckOutputPath_MissingParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "report.db")
	result := CheckOutputPath("sqlite", path)
	if !result.Passed {
		t.Fatalf("expected pass when ancestor is writable, got: %s", result.Detail)
	}
}

func TestCheckOutputPath_ParentIsFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckOutputPath("sqlite", filepath.Join(blocker, "report.db"))
	if result.Passed {
		t.Fatal("expected failure when parent is a file")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSQLite(), testsupport.WithMetrics())
	results := RunAll(cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 0 {
		t.Fatalf("expected only the optional dictionary check to fail, got %+v", failed)
	}
	if results[2].Passed {
		t.Fatal("expected dictionary check to fail without a dictionary file")
	}

	if err := os.RemoveAll(cfg.Paths.SBOMDir); err != nil {
		t.Fatal(err)
	}
	if failed := Failed(RunAll(cfg)); len(failed) != 1 || failed[0].Name != "SBOM directory" {
		t.Fatalf("expected SBOM directory failure, got %+v", failed)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if RunAll(nil) != nil {
		t.Fatal("expected nil results")
	}
}
