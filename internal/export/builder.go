package export

import (
	"fmt"
	"io"
)

// ExportBuilder configures an export with chained calls.
//
//	err := NewExportBuilder().
//	    WithFormat(FormatCSV).
//	    WithFilePath("stats.csv").
//	    WithOverwrite(true).
//	    Export(rows)
type ExportBuilder struct {
	format     Format
	filePath   string
	prettyJSON bool
	overwrite  bool
	password   string
	writer     io.Writer
}

// NewExportBuilder returns a builder for JSON output with no destination set.
func NewExportBuilder() *ExportBuilder {
	return &ExportBuilder{format: FormatJSON}
}

// WithFormat sets the export format.
func (b *ExportBuilder) WithFormat(format Format) *ExportBuilder {
	b.format = format
	return b
}

// WithFilePath writes to a file. It replaces any writer set earlier.
func (b *ExportBuilder) WithFilePath(filePath string) *ExportBuilder {
	b.filePath = filePath
	b.writer = nil
	return b
}

// WithWriter writes to w instead of a file. Writer output is never encrypted.
func (b *ExportBuilder) WithWriter(w io.Writer) *ExportBuilder {
	b.writer = w
	b.filePath = ""
	return b
}

// WithPrettyJSON indents JSON output.
func (b *ExportBuilder) WithPrettyJSON(pretty bool) *ExportBuilder {
	b.prettyJSON = pretty
	return b
}

// WithOverwrite replaces an existing file instead of failing.
func (b *ExportBuilder) WithOverwrite(overwrite bool) *ExportBuilder {
	b.overwrite = overwrite
	return b
}

// WithPassword seals file output.
func (b *ExportBuilder) WithPassword(password string) *ExportBuilder {
	b.password = password
	return b
}

// WithTimestampedFilename writes to "<prefix>_<timestamp>.<format>".
func (b *ExportBuilder) WithTimestampedFilename(prefix string) *ExportBuilder {
	return b.WithFilePath(GenerateFilename(prefix, b.format))
}

// Build returns the file export options.
func (b *ExportBuilder) Build() Options {
	return Options{
		Format:     b.format,
		FilePath:   b.filePath,
		PrettyJSON: b.prettyJSON,
		Overwrite:  b.overwrite,
		Password:   b.password,
	}
}

// Export runs the configured export.
func (b *ExportBuilder) Export(data any) error {
	if err := b.validate(); err != nil {
		return err
	}
	if b.writer != nil {
		return ExportToWriter(b.writer, b.format, data, b.prettyJSON)
	}
	return NewExporter(b.Build()).Export(data)
}

func (b *ExportBuilder) validate() error {
	if b.writer == nil && b.filePath == "" {
		return fmt.Errorf("either file path or writer must be set")
	}
	switch b.format {
	case FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("unsupported export format: %s", b.format)
	}
	return nil
}
