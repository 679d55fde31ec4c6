package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitPathForViper(t *testing.T) {
	dir, name, ext := SplitPathForViper("/etc/hs300/config.yaml")
	if dir != "/etc/hs300" || name != "config" || ext != "yaml" {
		t.Errorf("SplitPathForViper() = %q, %q, %q", dir, name, ext)
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	if _, ok := PathExists(dir); !ok {
		t.Errorf("PathExists(%q) = false", dir)
	}
	if _, ok := PathExists(filepath.Join(dir, "missing")); ok {
		t.Errorf("PathExists(missing) = true")
	}
}

func TestEnsureParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "snapshots.db")
	if err := EnsureParentDir(path); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(filepath.Dir(path)); err != nil || !fi.IsDir() {
		t.Errorf("parent directory not created: %v", err)
	}
}

func TestFormatErrorList(t *testing.T) {
	if err := FormatErrorList(nil); err != nil {
		t.Errorf("FormatErrorList(nil) = %v, want nil", err)
	}
	err := FormatErrorList([]error{errors.New("first"), errors.New("second")})
	msg := err.Error()
	if !strings.Contains(msg, "[0] first") || !strings.Contains(msg, "[1] second") {
		t.Errorf("FormatErrorList() = %q", msg)
	}
}
