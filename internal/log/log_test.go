package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestLogLevelSet(t *testing.T) {
	var ll LogLevel
	for _, v := range []string{"debug", "WARN", "disabled"} {
		if err := ll.Set(v); err != nil {
			t.Errorf("Set(%q) unexpected error: %v", v, err)
		}
	}
	if ll != DISABLED {
		t.Errorf("ll = %q, want disabled", ll)
	}
	if err := ll.Set("loud"); err == nil {
		t.Errorf("Set(loud) should fail")
	}
}

func TestLevel(t *testing.T) {
	if l, err := WARN.Level(); err != nil || l != zerolog.WarnLevel {
		t.Errorf("WARN.Level() = %v, %v", l, err)
	}
	if _, err := LogLevel("nope").Level(); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestInitWithLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hs300.log")
	if err := InitWithLogLevel(INFO, path); err != nil {
		t.Fatalf("InitWithLogLevel() unexpected error: %v", err)
	}
	log.Debug().Msg("hidden")
	log.Info().Str("host", "10.0.0.5").Msg("visible")
	if err := Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	if !strings.Contains(out, "visible") || !strings.Contains(out, "10.0.0.5") {
		t.Errorf("log file missing info entry: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written at info level: %s", out)
	}
}
