package format

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter writes data as YAML
type YAMLFormatter struct {
	w io.Writer
}

// NewYAMLFormatter creates a YAML formatter
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{w: w}
}

// Format writes data as one YAML document
func (f *YAMLFormatter) Format(data interface{}) error {
	enc := yaml.NewEncoder(f.w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}
