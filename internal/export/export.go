// Package export writes decks and statistics to files and reads deck files back.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/ramonehamilton/flashdeck/internal/storage"
)

// Format represents the export format.
type Format string

const (
	// FormatCSV represents CSV export format.
	FormatCSV Format = "csv"
	// FormatJSON represents JSON export format.
	FormatJSON Format = "json"
)

// Options holds configuration for export operations.
type Options struct {
	Format     Format
	FilePath   string
	PrettyJSON bool
	Overwrite  bool

	// Password seals the output with storage.SealData.
	Password string
}

// Exporter writes data to a file in one format.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export encodes data and writes it to the configured file. CSV needs a slice
// of structs; JSON accepts any value.
func (e *Exporter) Export(data any) error {
	var buf bytes.Buffer
	if err := ExportToWriter(&buf, e.opts.Format, data, e.opts.PrettyJSON); err != nil {
		return err
	}

	output := buf.Bytes()
	if e.opts.Password != "" {
		sealed, err := storage.SealData(output, storage.DefaultEncryptionConfig(e.opts.Password))
		if err != nil {
			return fmt.Errorf("failed to encrypt export: %w", err)
		}
		output = sealed
	}
	return e.writeToFile(output)
}

// writeToFile writes data to the configured file path.
func (e *Exporter) writeToFile(data []byte) (err error) {
	file, err := e.createFile()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}

// createFile creates the output file, handling overwrite settings.
func (e *Exporter) createFile() (*os.File, error) {
	if e.opts.FilePath == "" {
		return nil, fmt.Errorf("no output file path set")
	}
	if err := os.MkdirAll(filepath.Dir(e.opts.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(e.opts.FilePath); err == nil && !e.opts.Overwrite {
		return nil, fmt.Errorf("file already exists: %s (use overwrite option to replace)", e.opts.FilePath)
	}

	file, err := os.Create(e.opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// ExportToWriter encodes data to w.
func ExportToWriter(w io.Writer, format Format, data any, prettyJSON bool) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		if prettyJSON {
			encoder.SetIndent("", "  ")
		}
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return nil
	case FormatCSV:
		return writeCSV(w, data)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// writeCSV writes a slice of structs as CSV: one header row from the csv tags
// (or field names), then one row per element.
func writeCSV(w io.Writer, data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("CSV export requires a slice, got %s", v.Kind())
	}
	if v.Len() == 0 {
		return fmt.Errorf("no data to export")
	}

	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("CSV export requires a slice of structs")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeaders(elemType)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}
		if err := writer.Write(csvRow(elem)); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvField(field reflect.StructField) (name string, ok bool) {
	tag := field.Tag.Get("csv")
	if !field.IsExported() || tag == "-" {
		return "", false
	}
	if tag != "" {
		return tag, true
	}
	return field.Name, true
}

func csvHeaders(t reflect.Type) []string {
	headers := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name, ok := csvField(t.Field(i)); ok {
			headers = append(headers, name)
		}
	}
	return headers
}

func csvRow(v reflect.Value) []string {
	t := v.Type()
	row := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if _, ok := csvField(t.Field(i)); ok {
			row = append(row, valueToString(v.Field(i)))
		}
	}
	return row
}

// valueToString renders one CSV cell.
func valueToString(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Bool:
		return fmt.Sprintf("%t", v.Bool())
	case reflect.Struct:
		if t, ok := v.Interface().(time.Time); ok {
			return t.Format(time.RFC3339)
		}
	}
	return fmt.Sprintf("%v", v.Interface())
}

// GenerateFilename returns "<prefix>_<timestamp>.<format>".
func GenerateFilename(prefix string, format Format) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), format)
}
