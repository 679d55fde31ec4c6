package hs300

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenCHAMI/hs300/pkg/kasa"
	"github.com/spf13/viper"
)

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "host: 192.168.1.40\nprotocol: udp\ntimeout: 750ms\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	SetDefaults()
	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}

	c, err := StripConfigFromViper("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Host != "192.168.1.40" || c.Protocol != kasa.UDP || c.Timeout != 750*time.Millisecond {
		t.Errorf("unexpected config: %+v", c)
	}
	if c.Port != kasa.DefaultPort {
		t.Errorf("Port = %d, want default %d", c.Port, kasa.DefaultPort)
	}

	c, err = StripConfigFromViper("10.0.0.9")
	if err != nil || c.Host != "10.0.0.9" {
		t.Errorf("explicit host not used: %+v, %v", c, err)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	if err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("expected error for missing config file")
	}
}

func TestStripConfigBadProtocol(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("protocol", "serial")
	if _, err := StripConfigFromViper("10.0.0.9"); !errors.Is(err, kasa.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}
