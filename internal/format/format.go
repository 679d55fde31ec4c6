package format

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DataFormat selects how command output is rendered.
type DataFormat string

const (
	FORMAT_LIST DataFormat = "list"
	FORMAT_JSON DataFormat = "json"
	FORMAT_YAML DataFormat = "yaml"
)

var formats = []DataFormat{FORMAT_LIST, FORMAT_JSON, FORMAT_YAML}

func (df DataFormat) String() string {
	return string(df)
}

func (df *DataFormat) Set(v string) error {
	switch f := DataFormat(strings.ToLower(v)); f {
	case FORMAT_LIST, FORMAT_JSON, FORMAT_YAML:
		*df = f
		return nil
	}
	return fmt.Errorf("must be one of %v", formats)
}

func (df DataFormat) Type() string {
	return "DataFormat"
}

// Marshal encodes data as JSON or YAML. The list format is rendered by each
// command and cannot be marshaled here.
func Marshal(data any, outFormat DataFormat) ([]byte, error) {
	switch outFormat {
	case FORMAT_JSON:
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data into JSON: %w", err)
		}
		return b, nil
	case FORMAT_YAML:
		b, err := yaml.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data into YAML: %w", err)
		}
		return b, nil
	case FORMAT_LIST:
		return nil, fmt.Errorf("list format cannot be marshaled")
	default:
		return nil, fmt.Errorf("unknown data format: %s", outFormat)
	}
}

// DataFormatFromFileExt guesses the format of path from its extension,
// returning defaultFmt when the extension is not recognized.
func DataFormatFromFileExt(path string, defaultFmt DataFormat) DataFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FORMAT_JSON
	case ".yaml", ".yml":
		return FORMAT_YAML
	}
	return defaultFmt
}
