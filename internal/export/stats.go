package export

import (
	"io"
	"strings"

	"github.com/ramonehamilton/flashdeck/internal/richtext"
	"github.com/ramonehamilton/flashdeck/internal/stats"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// CardStatRow is one CSV row of the statistics export.
type CardStatRow struct {
	Deck     string  `csv:"deck"`
	Front    string  `csv:"front"`
	Keywords string  `csv:"keywords"`
	Attempts int     `csv:"attempts"`
	Correct  int     `csv:"correct"`
	Wrong    int     `csv:"wrong"`
	Accuracy float64 `csv:"accuracy_pct"`
}

// CardStatRows flattens decks into one row per card. Fronts are plain text.
func CardStatRows(decks []models.Deck) []CardStatRow {
	rows := []CardStatRow{}
	for _, d := range decks {
		for _, c := range d.Cards {
			rows = append(rows, CardStatRow{
				Deck:     d.Title,
				Front:    richtext.StripToPlainText(c.Front),
				Keywords: strings.Join(c.Keywords, ";"),
				Attempts: c.Attempts,
				Correct:  c.Correct,
				Wrong:    c.Wrong,
				Accuracy: stats.Accuracy(c) * 100,
			})
		}
	}
	return rows
}

// ExportStatsCSV writes per-card statistics to path.
func ExportStatsCSV(decks []models.Deck, path string, overwrite bool) error {
	return NewExportBuilder().
		WithFormat(FormatCSV).
		WithFilePath(path).
		WithOverwrite(overwrite).
		Export(CardStatRows(decks))
}

// WriteStatsCSV writes per-card statistics to w.
func WriteStatsCSV(w io.Writer, decks []models.Deck) error {
	return NewExportBuilder().
		WithFormat(FormatCSV).
		WithWriter(w).
		Export(CardStatRows(decks))
}
