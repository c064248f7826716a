// Package charts renders deck statistics as interactive HTML charts.
package charts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/flashdeck/internal/richtext"
	"github.com/ramonehamilton/flashdeck/internal/stats"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

// Series colors.
const (
	ColorCorrect  = "#3BA272"
	ColorWrong    = "#EE6666"
	ColorAccuracy = "#5470C6"
)

// maxLabelRunes truncates card fronts used as axis labels.
const maxLabelRunes = 24

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string
	Subtitle string
	Width    string // e.g. "900px"
	Height   string
	Theme    string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
	}
}

func (c ChartConfig) globalOptions() []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  c.Width,
			Height: c.Height,
			Theme:  c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.Title,
			Subtitle: c.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	}
}

// DeckOutcomes builds a stacked bar of correct and wrong answers per deck.
func DeckOutcomes(decks []models.Deck, config ChartConfig) (*charts.Bar, error) {
	if len(decks) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(decks))
	correct := make([]opts.BarData, len(decks))
	wrong := make([]opts.BarData, len(decks))
	for i, d := range decks {
		s := stats.Summarize(d.Cards)
		labels[i] = d.Title
		correct[i] = opts.BarData{Value: s.Correct}
		wrong[i] = opts.BarData{Value: s.Wrong}
	}

	if config.Title == "" {
		config.Title = "Answers per deck"
	}
	return stackedBar(labels, correct, wrong, config), nil
}

// CardOutcomes builds a stacked bar of correct and wrong answers per card of
// one deck. Card fronts are shown as plain text.
func CardOutcomes(deck models.Deck, config ChartConfig) (*charts.Bar, error) {
	if len(deck.Cards) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(deck.Cards))
	correct := make([]opts.BarData, len(deck.Cards))
	wrong := make([]opts.BarData, len(deck.Cards))
	for i, c := range deck.Cards {
		labels[i] = cardLabel(c)
		correct[i] = opts.BarData{Value: c.Correct}
		wrong[i] = opts.BarData{Value: c.Wrong}
	}

	if config.Title == "" {
		config.Title = deck.Title
	}
	return stackedBar(labels, correct, wrong, config), nil
}

func stackedBar(labels []string, correct, wrong []opts.BarData, config ChartConfig) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(config.globalOptions(),
		charts.WithColorsOpts(opts.Colors{ColorCorrect, ColorWrong}),
		charts.WithYAxisOpts(opts.YAxis{Name: "answers"}),
	)...)

	bar.SetXAxis(labels).
		AddSeries("Correct", correct).
		AddSeries("Wrong", wrong).
		SetSeriesOptions(
			charts.WithBarChartOpts(opts.BarChart{Stack: "answers"}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)
	return bar
}

// DeckAccuracy builds a line of accuracy percentages per deck. Decks without
// attempts are plotted at zero.
func DeckAccuracy(decks []models.Deck, config ChartConfig) (*charts.Line, error) {
	if len(decks) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(decks))
	data := make([]opts.LineData, len(decks))
	for i, d := range decks {
		labels[i] = d.Title
		data[i] = opts.LineData{Value: roundPct(stats.Summarize(d.Cards).Accuracy)}
	}

	if config.Title == "" {
		config.Title = "Accuracy per deck"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(append(config.globalOptions(),
		charts.WithColorsOpts(opts.Colors{ColorAccuracy}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Min: 0, Max: 100}),
	)...)
	line.SetXAxis(labels).
		AddSeries("Accuracy", data).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
		)
	return line, nil
}

// Report renders the deck overview and one card chart per non-empty deck into
// a single page.
func Report(decks []models.Deck, config ChartConfig, w io.Writer) error {
	if len(decks) == 0 {
		return ErrNoData
	}

	page := components.NewPage()
	page.PageTitle = "Flashdeck statistics"

	outcomes, err := DeckOutcomes(decks, config)
	if err != nil {
		return err
	}
	accuracy, err := DeckAccuracy(decks, config)
	if err != nil {
		return err
	}
	page.AddCharts(outcomes, accuracy)

	for _, d := range decks {
		if len(d.Cards) == 0 {
			continue
		}
		perCard, err := CardOutcomes(d, ChartConfig{Width: config.Width, Height: config.Height, Theme: config.Theme})
		if err != nil {
			return err
		}
		page.AddCharts(perCard)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderReport writes Report to outputPath.
func RenderReport(decks []models.Deck, config ChartConfig, outputPath string) error {
	if len(decks) == 0 {
		return ErrNoData
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return Report(decks, config, f)
}

func cardLabel(c models.Card) string {
	runes := []rune(richtext.StripToPlainText(c.Front))
	if len(runes) > maxLabelRunes {
		return string(runes[:maxLabelRunes-1]) + "…"
	}
	return string(runes)
}

func roundPct(fraction float64) float64 {
	return float64(int(fraction*1000+0.5)) / 10
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
