package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter writes data as JSON
type JSONFormatter struct {
	w      io.Writer
	pretty bool
}

// NewJSONFormatter creates a JSON formatter; pretty indents the output
func NewJSONFormatter(w io.Writer, pretty bool) *JSONFormatter {
	return &JSONFormatter{w: w, pretty: pretty}
}

// Format writes data as one JSON document
func (f *JSONFormatter) Format(data interface{}) error {
	enc := json.NewEncoder(f.w)
	enc.SetEscapeHTML(false)
	if f.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}
