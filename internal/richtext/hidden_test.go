package richtext

import (
	"strings"
	"testing"
)

func hiddenSpans(chars ...string) string {
	var b strings.Builder
	for _, c := range chars {
		b.WriteString(`<span class="hidden-text">` + c + `</span>`)
	}
	return b.String()
}

func TestNormalizeHidden(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "no hidden spans",
			input: "<p>plain <b>bold</b></p>",
			want:  "<p>plain <b>bold</b></p>",
		},
		{
			name:  "transparent and black",
			input: `<span style="color:transparent;background-color:black">ab</span>`,
			want:  hiddenSpans("a", "b"),
		},
		{
			name:  "transparent only with spacing",
			input: `<p>x <span style="color: transparent;">hi</span> y</p>`,
			want:  "<p>x " + hiddenSpans("h", "i") + " y</p>",
		},
		{
			name:  "black background only",
			input: `<span style="background-color:  black">q</span>`,
			want:  hiddenSpans("q"),
		},
		{
			name:  "case insensitive",
			input: `<SPAN style="COLOR:TRANSPARENT">z</SPAN>`,
			want:  hiddenSpans("z"),
		},
		{
			name:  "multibyte characters",
			input: `<span style="color:transparent">정답</span>`,
			want:  hiddenSpans("정", "답"),
		},
		{
			name:  "entities count as one character",
			input: `<span style="color:transparent">a&amp;b</span>`,
			want:  hiddenSpans("a", "&amp;", "b"),
		},
		{
			name:  "nested formatting tags pass through",
			input: `<span style="color:transparent"><b>ok</b></span>`,
			want:  "<b>" + hiddenSpans("o", "k") + "</b>",
		},
		{
			name:  "spaces are hidden too",
			input: `<span style="color:transparent">a b</span>`,
			want:  hiddenSpans("a", " ", "b"),
		},
		{
			name:  "multiple spans",
			input: `<span style="color:transparent">a</span>-<span style="color:transparent">b</span>`,
			want:  hiddenSpans("a") + "-" + hiddenSpans("b"),
		},
		{
			name:  "visible styled span untouched",
			input: `<span style="color:red">red</span>`,
			want:  `<span style="color:red">red</span>`,
		},
		{
			name:  "unclosed span passes through",
			input: `<span style="color:transparent">never closed`,
			want:  `<span style="color:transparent">never closed`,
		},
		{
			name:  "unterminated tag inside match",
			input: `<span style="color:transparent">a<b</span>`,
			want:  hiddenSpans("a", "&lt;", "b"),
		},
		{
			name:  "canonical spans inside styled span",
			input: `<span style="color:transparent;background-color:black"><span class="hidden-text">a</span>b</span>`,
			want:  hiddenSpans("a", "b"),
		},
		{
			name:  "styled span inside styled span",
			input: `<span style="color:transparent"><span style="color:transparent">a</span>b</span>c`,
			want:  hiddenSpans("a", "b") + "c",
		},
		{
			name:  "visible span inside styled span",
			input: `<span style="color:transparent">a<span style="color:red">b</span>c</span>d`,
			want:  hiddenSpans("a", "b", "c") + "d",
		},
		{
			name:  "stray ampersand",
			input: `<span style="color:transparent">a & b</span>`,
			want:  hiddenSpans("a", " ", "&", " ", "b"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeHidden(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeHidden(%q)\n got: %q\nwant: %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeHidden_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		`<span style="color:transparent;background-color:black">ab</span>`,
		`<p>one <span style="color: transparent">two</span> three</p>`,
		`<span style="color:transparent"><span style="color:transparent">a</span></span>`,
		`<span style="color:transparent">x</span><span style="color:transparent">y`,
		"<span style=\"color:transparent\">line\nbreak</span>",
		`<span style="color:transparent">a&#x41;&lt;</span>`,
		`<span style="color:transparent;background-color:black"><span class="hidden-text">a</span>b</span>`,
		`<p><span style="background-color:black">` + hiddenSpans("x", "y") + `z</span></p>`,
	}

	for _, input := range inputs {
		once := NormalizeHidden(input)
		twice := NormalizeHidden(once)
		if once != twice {
			t.Errorf("not idempotent for %q\n once: %q\ntwice: %q", input, once, twice)
		}
	}
}

func TestStripToPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"<p></p>", ""},
		{"<p>  </p>", ""},
		{"  hello  ", "hello"},
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{hiddenSpans("a", "b"), "ab"},
		{"<br/>", ""},
		{"a < b", "a < b"},
		{"x &amp; y", "x &amp; y"},
	}

	for _, tt := range tests {
		if got := StripToPlainText(tt.input); got != tt.want {
			t.Errorf("StripToPlainText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStripToPlainText_NoMarkupRoundTrip(t *testing.T) {
	for _, s := range []string{"answer", " spaced answer ", "한국어", "3 + 4 = 7"} {
		if got := StripToPlainText(s); got != strings.TrimSpace(s) {
			t.Errorf("StripToPlainText(%q) = %q", s, got)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("<p><br></p>") {
		t.Error("expected empty paragraph to be blank")
	}
	if IsBlank("<p>x</p>") {
		t.Error("expected text to be non-blank")
	}
}

func TestRevealAll(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical", "<p>" + hiddenSpans("a", "b") + "</p>", "<p>ab</p>"},
		{"raw editor span", `x <span style="color:transparent">secret</span>`, "x secret"},
		{"canonical inside raw", `<span style="color:transparent"><span class="hidden-text">a</span>b</span>!`, "ab!"},
		{"nothing hidden", "<i>plain</i>", "<i>plain</i>"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RevealAll(tt.input); got != tt.want {
				t.Errorf("RevealAll() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasHidden(t *testing.T) {
	if !HasHidden(`<span style="color:transparent">a</span>`) {
		t.Error("expected raw hidden span to be detected")
	}
	if !HasHidden(hiddenSpans("a")) {
		t.Error("expected canonical span to be detected")
	}
	if HasHidden(`<span style="color:transparent">never closed`) {
		t.Error("expected unclosed span not to count as hidden")
	}
	if HasHidden("<p>visible</p>") {
		t.Error("expected no hidden text")
	}
}

func TestMaskHidden(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical", "<p>Capital: " + hiddenSpans("a", "b") + "</p>", "Capital: __"},
		{"raw editor span", `x <span style="color:transparent">Rome</span>!`, "x ____!"},
		{"multibyte", `<span style="background-color:black">서울</span>`, "__"},
		{"canonical inside raw", `<span style="color:transparent;background-color:black"><span class="hidden-text">a</span>b</span>`, "__"},
		{"nothing hidden", "<b>plain</b>", "plain"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskHidden(tt.input, "_"); got != tt.want {
				t.Errorf("MaskHidden() = %q, want %q", got, tt.want)
			}
		})
	}
}
