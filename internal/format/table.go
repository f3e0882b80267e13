package format

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// NoData is printed for an empty result
const NoData = "No data to display"

// TableFormatter writes data as an aligned table
type TableFormatter struct {
	w         io.Writer
	useColors bool
}

// NewTableFormatter creates a table formatter
func NewTableFormatter(w io.Writer, useColors bool) *TableFormatter {
	return &TableFormatter{w: w, useColors: useColors}
}

// Format writes data as a table. Slices of structs get one column per
// exported field, in declaration order.
func (f *TableFormatter) Format(data interface{}) error {
	if data == nil {
		fmt.Fprintln(f.w, NoData)
		return nil
	}

	switch v := data.(type) {
	case []map[string]interface{}:
		return f.formatMapSlice(v)
	case map[string]interface{}:
		return f.formatSingleMap(v)
	default:
		return f.formatReflection(data)
	}
}

func (f *TableFormatter) formatMapSlice(data []map[string]interface{}) error {
	if len(data) == 0 {
		fmt.Fprintln(f.w, NoData)
		return nil
	}

	keys := sortedKeys(data[0])
	headers := make([]string, len(keys))
	for i, k := range keys {
		headers[i] = formatHeader(k)
	}

	table := f.newTable(headers)
	for _, row := range data {
		values := make([]string, len(keys))
		for i, k := range keys {
			values[i] = f.formatValue(row[k])
		}
		table.Append(values)
	}
	table.Render()
	return nil
}

func (f *TableFormatter) formatSingleMap(data map[string]interface{}) error {
	table := f.newTable([]string{"Property", "Value"})
	for _, k := range sortedKeys(data) {
		table.Append([]string{k, f.formatValue(data[k])})
	}
	table.Render()
	return nil
}

func (f *TableFormatter) formatReflection(data interface{}) error {
	v := reflect.Indirect(reflect.ValueOf(data))
	if !v.IsValid() {
		fmt.Fprintln(f.w, NoData)
		return nil
	}

	switch v.Kind() {
	case reflect.Struct:
		if _, ok := v.Interface().(time.Time); ok {
			fmt.Fprintln(f.w, f.formatValue(v.Interface()))
			return nil
		}
		return f.formatStruct(v)
	case reflect.Slice, reflect.Array:
		return f.formatSlice(v)
	default:
		fmt.Fprintln(f.w, f.formatValue(v.Interface()))
		return nil
	}
}

// formatStruct writes one struct as a vertical table
func (f *TableFormatter) formatStruct(v reflect.Value) error {
	table := f.newTable([]string{"Field", "Value"})
	for _, c := range columnsOf(v.Type()) {
		table.Append([]string{c.header, f.formatValue(v.Field(c.index).Interface())})
	}
	table.Render()
	return nil
}

func (f *TableFormatter) formatSlice(v reflect.Value) error {
	if v.Len() == 0 {
		fmt.Fprintln(f.w, NoData)
		return nil
	}

	elemType := v.Type().Elem()
	for elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}

	if elemType.Kind() != reflect.Struct || elemType == reflect.TypeOf(time.Time{}) {
		table := f.newTable([]string{"Value"})
		for i := 0; i < v.Len(); i++ {
			table.Append([]string{f.formatValue(v.Index(i).Interface())})
		}
		table.Render()
		return nil
	}

	columns := columnsOf(elemType)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.header
	}

	table := f.newTable(headers)
	for i := 0; i < v.Len(); i++ {
		row := reflect.Indirect(v.Index(i))
		values := make([]string, len(columns))
		if row.IsValid() {
			for j, c := range columns {
				values[j] = f.formatValue(row.Field(c.index).Interface())
			}
		}
		table.Append(values)
	}
	table.Render()
	return nil
}

type column struct {
	index  int
	header string
}

// columnsOf lists the exported fields of t. A `table:"Name"` tag overrides
// the header and `table:"-"` hides the field.
func columnsOf(t reflect.Type) []column {
	var out []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		header := field.Tag.Get("table")
		if header == "-" {
			continue
		}
		if header == "" {
			header = splitCamel(field.Name)
		}
		out = append(out, column{index: i, header: header})
	}
	return out
}

func (f *TableFormatter) newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(f.w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	if f.useColors {
		colors := make([]tablewriter.Colors, len(headers))
		for i := range colors {
			colors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlueColor}
		}
		table.SetHeaderColor(colors...)
	}
	return table
}

// formatHeader turns snake_case into Title Case
func formatHeader(header string) string {
	words := strings.Split(header, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}

// splitCamel turns "LastAccessedAt" into "Last Accessed At" and keeps
// acronyms such as "ID" or "URL" together
func splitCamel(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && isUpper(r) {
			prevLower := !isUpper(runes[i-1])
			nextLower := i+1 < len(runes) && !isUpper(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func (f *TableFormatter) formatValue(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Local().Format("2006-01-02 15:04")
	case fmt.Stringer:
		return v.String()
	case []string:
		return strings.Join(v, ", ")
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	case bool:
		if f.useColors {
			if v {
				return color.GreenString("true")
			}
			return color.RedString("false")
		}
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
