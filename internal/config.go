package hs300

import (
	"fmt"
	"time"

	"github.com/OpenCHAMI/hs300/internal/util"
	"github.com/OpenCHAMI/hs300/pkg/kasa"
	"github.com/spf13/viper"
)

// LoadConfig reads the config file at path into viper. No search paths are
// set, so path must name the file. Flags and environment variables keep
// precedence over values from the file.
func LoadConfig(path string) error {
	dir, filename, ext := util.SplitPathForViper(path)
	viper.AddConfigPath(dir)
	viper.SetConfigName(filename)
	viper.SetConfigType(ext)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return fmt.Errorf("config file not found: %w", err)
		}
		return fmt.Errorf("failed to load config file: %w", err)
	}
	return nil
}

// SetDefaults resets every viper key used by hs300 to its default.
func SetDefaults() {
	viper.SetDefault("host", "")
	viper.SetDefault("port", kasa.DefaultPort)
	viper.SetDefault("timeout", kasa.DefaultTimeout)
	viper.SetDefault("protocol", string(kasa.TCP))
	viper.SetDefault("device-id", "")
	viper.SetDefault("concurrency", -1)
	viper.SetDefault("config", "")
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-file", "")
	viper.SetDefault("cache", util.DefaultCachePath())
	viper.SetDefault("status.format", "list")
	viper.SetDefault("status.no-cache", false)
	viper.SetDefault("status.output", "")
	viper.SetDefault("list.output", "")
	viper.SetDefault("secrets.file", util.DefaultSecretsPath())
	viper.SetDefault("daemon.endpoint", "localhost:8080")
}

// StripConfig holds what is needed to reach one strip.
type StripConfig struct {
	Host     string
	Port     int
	Timeout  time.Duration
	Protocol kasa.Protocol
	DeviceID string
}

// StripConfigFromViper collects connection settings for host from viper.
// An empty host uses the configured default host.
func StripConfigFromViper(host string) (StripConfig, error) {
	if host == "" {
		host = viper.GetString("host")
	}
	proto, err := kasa.ParseProtocol(viper.GetString("protocol"))
	if err != nil {
		return StripConfig{}, err
	}
	return StripConfig{
		Host:     host,
		Port:     viper.GetInt("port"),
		Timeout:  viper.GetDuration("timeout"),
		Protocol: proto,
		DeviceID: viper.GetString("device-id"),
	}, nil
}

// Options converts c into kasa options.
func (c StripConfig) Options() []kasa.Option {
	opts := []kasa.Option{
		kasa.WithPort(c.Port),
		kasa.WithProtocol(c.Protocol),
	}
	if c.Timeout > 0 {
		opts = append(opts, kasa.WithTimeout(c.Timeout))
	}
	if c.DeviceID != "" {
		opts = append(opts, kasa.WithDeviceID(c.DeviceID))
	}
	return opts
}
