package logcfg_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oonf-go/oonf/logcfg"
)

func TestStdApplierFileSwap(t *testing.T) {
	dir := t.TempDir()
	a := logcfg.NewStdApplier()
	defer a.Close()

	first := filepath.Join(dir, "a.log")
	if err := a.SetFile(first); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(first); err != nil {
		t.Fatalf("expected %s to exist: %v", first, err)
	}

	second := filepath.Join(dir, "b.log")
	if err := a.SetFile(second); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(second); err != nil {
		t.Fatalf("expected %s to exist: %v", second, err)
	}
}

func TestStdApplierLogfGatedByMask(t *testing.T) {
	dir := t.TempDir()
	a := logcfg.NewStdApplier()
	defer a.Close()

	path := filepath.Join(dir, "out.log")
	if err := a.SetFile(path); err != nil {
		t.Fatal(err)
	}
	a.SetMask(logcfg.Mask{"writer": logcfg.SeverityInfo})

	a.Logf("writer", logcfg.SeverityDebug, "should not appear")
	a.Logf("writer", logcfg.SeverityInfo, "should appear")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "" {
		t.Fatal("expected at least one line written to the file sink")
	}
}
