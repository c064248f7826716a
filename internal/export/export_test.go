package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ramonehamilton/flashdeck/internal/storage"
)

type reviewRow struct {
	Card     string    `csv:"card"`
	Attempts int       `csv:"attempts"`
	Accuracy float64   `csv:"accuracy"`
	Hidden   bool      `csv:"hidden"`
	Reviewed time.Time `csv:"reviewed"`
	Note     *string   `csv:"note"`
	internal string
	Skipped  string `csv:"-"`
}

func sampleRows() []reviewRow {
	note := "tricky"
	return []reviewRow{
		{Card: "2+2", Attempts: 3, Accuracy: 66.666, Hidden: true, Reviewed: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), Note: &note},
		{Card: "3+3", Attempts: 0, internal: "x", Skipped: "y"},
	}
}

func TestExportJSON(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "rows.json")

	exporter := NewExporter(Options{Format: FormatJSON, FilePath: filePath, PrettyJSON: true})
	if err := exporter.Export(sampleRows()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}
	if !strings.Contains(string(content), "\n  ") {
		t.Error("Expected indented JSON")
	}

	var result []reviewRow
	if err := json.Unmarshal(content, &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
	if len(result) != 2 || result[0].Card != "2+2" {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportToWriter(&buf, FormatCSV, sampleRows(), false); err != nil {
		t.Fatalf("ExportToWriter failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "card,attempts,accuracy,hidden,reviewed,note" {
		t.Errorf("Header = %q", lines[0])
	}
	if lines[1] != "2+2,3,66.67,true,2024-01-01T12:00:00Z,tricky" {
		t.Errorf("Row 1 = %q", lines[1])
	}
	if lines[2] != "3+3,0,0.00,false,0001-01-01T00:00:00Z," {
		t.Errorf("Row 2 = %q", lines[2])
	}
}

func TestExportCSVRejectsNonStructs(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportToWriter(&buf, FormatCSV, []string{"a"}, false); err == nil {
		t.Error("Expected error for slice of strings")
	}
	if err := ExportToWriter(&buf, FormatCSV, reviewRow{}, false); err == nil {
		t.Error("Expected error for non-slice")
	}
	if err := ExportToWriter(&buf, FormatCSV, []reviewRow{}, false); err == nil {
		t.Error("Expected error for empty slice")
	}
	if err := ExportToWriter(&buf, Format("xml"), sampleRows(), false); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestExportOverwrite(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "rows.json")
	data := sampleRows()

	if err := NewExporter(Options{Format: FormatJSON, FilePath: filePath}).Export(data); err != nil {
		t.Fatalf("First export failed: %v", err)
	}
	if err := NewExporter(Options{Format: FormatJSON, FilePath: filePath}).Export(data); err == nil {
		t.Fatal("Expected error when overwrite is false, got nil")
	}
	if err := NewExporter(Options{Format: FormatJSON, FilePath: filePath, Overwrite: true}).Export(data); err != nil {
		t.Fatalf("Export with overwrite failed: %v", err)
	}
}

func TestExportEncrypted(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "rows.fdenc")

	err := NewExporter(Options{Format: FormatJSON, FilePath: filePath, Password: "pw"}).Export(sampleRows())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	sealed, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if !storage.IsSealed(sealed) {
		t.Fatal("Expected sealed output")
	}
	plain, err := storage.OpenSealed(sealed, storage.DefaultEncryptionConfig("pw"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !strings.Contains(string(plain), "2+2") {
		t.Errorf("Unexpected plaintext: %s", plain)
	}
}

func TestExportBuilder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExportBuilder().WithFormat(FormatCSV).WithWriter(&buf).Export(sampleRows()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "card,") {
		t.Errorf("Unexpected output: %s", buf.String())
	}

	if err := NewExportBuilder().Export(sampleRows()); err == nil {
		t.Error("Expected error without destination")
	}
	if err := NewExportBuilder().WithFormat("xml").WithWriter(&buf).Export(sampleRows()); err == nil {
		t.Error("Expected error for unsupported format")
	}

	opts := NewExportBuilder().WithFormat(FormatCSV).WithTimestampedFilename("stats").Build()
	if !strings.HasPrefix(opts.FilePath, "stats_") || !strings.HasSuffix(opts.FilePath, ".csv") {
		t.Errorf("FilePath = %q", opts.FilePath)
	}
}

func TestGenerateFilename(t *testing.T) {
	filename := GenerateFilename("statistics", FormatCSV)
	if !strings.HasPrefix(filename, "statistics_") || !strings.HasSuffix(filename, ".csv") {
		t.Errorf("Unexpected filename: %s", filename)
	}
}
