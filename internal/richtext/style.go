package richtext

import "fmt"

// Palette is the colour set of one UI theme.
type Palette struct {
	Background  string `json:"background"`
	Text        string `json:"text"`
	Placeholder string `json:"placeholder"`
	Card        string `json:"card"`
	Border      string `json:"border"`
	Accent      string `json:"accent"`
}

// Theme names accepted by PaletteFor.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// PaletteFor returns the palette for a theme name. Unknown names get the light palette.
func PaletteFor(theme string) Palette {
	if theme == ThemeDark {
		return Palette{
			Background:  "#000",
			Text:        "#fff",
			Placeholder: "#aaa",
			Card:        "#1c1c1e",
			Border:      "#333",
			Accent:      "#007AFF",
		}
	}
	return Palette{
		Background:  "#fff",
		Text:        "#000",
		Placeholder: "#888",
		Card:        "#fff",
		Border:      "#ccc",
		Accent:      "#007AFF",
	}
}

// Style is the presentation of the hidden-text class.
type Style struct {
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor"`
}

// HiddenStyle returns how HiddenClass spans render. Revealing only changes the
// style; stored markup never changes.
func HiddenStyle(revealed bool, palette Palette) Style {
	if revealed {
		return Style{Color: palette.Text, BackgroundColor: "transparent"}
	}
	return Style{Color: "transparent", BackgroundColor: "#000"}
}

// StyleSheet renders HiddenStyle as a CSS rule for the webview.
func StyleSheet(revealed bool, palette Palette) string {
	s := HiddenStyle(revealed, palette)
	return fmt.Sprintf(".%s { color: %s; background-color: %s; }", HiddenClass, s.Color, s.BackgroundColor)
}
