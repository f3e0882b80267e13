package format

import (
	"fmt"
	"io"
	"reflect"
	"time"
)

// TextFormatter writes data as "Key: value" lines
type TextFormatter struct {
	w     io.Writer
	cells *TableFormatter
}

// NewTextFormatter creates a text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{w: w, cells: NewTableFormatter(w, false)}
}

// Format writes data as text. Items of a list are separated by a blank line.
func (f *TextFormatter) Format(data interface{}) error {
	if data == nil {
		fmt.Fprintln(f.w, "No data")
		return nil
	}

	switch v := data.(type) {
	case string:
		fmt.Fprintln(f.w, v)
		return nil
	case map[string]interface{}:
		f.formatMap(v, "")
		return nil
	case []map[string]interface{}:
		if len(v) == 0 {
			fmt.Fprintln(f.w, "No data")
			return nil
		}
		for i, item := range v {
			f.header(i)
			f.formatMap(item, "  ")
		}
		return nil
	}

	rv := reflect.Indirect(reflect.ValueOf(data))
	if !rv.IsValid() {
		fmt.Fprintln(f.w, "No data")
		return nil
	}

	switch {
	case rv.Kind() == reflect.Struct && rv.Type() != reflect.TypeOf(time.Time{}):
		f.formatStruct(rv, "")
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		f.formatSlice(rv)
	default:
		fmt.Fprintln(f.w, f.value(rv.Interface()))
	}
	return nil
}

func (f *TextFormatter) formatSlice(v reflect.Value) {
	if v.Len() == 0 {
		fmt.Fprintln(f.w, "No data")
		return
	}

	for i := 0; i < v.Len(); i++ {
		item := reflect.Indirect(v.Index(i))
		if item.Kind() != reflect.Struct || item.Type() == reflect.TypeOf(time.Time{}) {
			fmt.Fprintln(f.w, f.value(v.Index(i).Interface()))
			continue
		}
		f.header(i)
		f.formatStruct(item, "  ")
	}
}

func (f *TextFormatter) formatStruct(v reflect.Value, indent string) {
	for _, c := range columnsOf(v.Type()) {
		fmt.Fprintf(f.w, "%s%s: %s\n", indent, c.header, f.value(v.Field(c.index).Interface()))
	}
}

func (f *TextFormatter) formatMap(m map[string]interface{}, indent string) {
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(f.w, "%s%s: %s\n", indent, formatHeader(k), f.value(m[k]))
	}
}

func (f *TextFormatter) header(i int) {
	if i > 0 {
		fmt.Fprintln(f.w)
	}
	fmt.Fprintf(f.w, "Item %d:\n", i+1)
}

func (f *TextFormatter) value(v interface{}) string {
	if v == nil {
		return "N/A"
	}
	return f.cells.formatValue(v)
}
