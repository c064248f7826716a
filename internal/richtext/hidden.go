// Package richtext handles the editor markup stored on card faces.
//
// Hidden text is authored in the editor by painting a span with a transparent
// foreground or a black background. The editor emits that as an inline-styled
// span; NormalizeHidden rewrites every such span into one canonical span per
// character so that any sub-range can later be revealed or re-hidden:
//
//	<span style="color:transparent;background-color:black">ab</span>
//	=> <span class="hidden-text">a</span><span class="hidden-text">b</span>
package richtext

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// HiddenClass is the class carried by every canonical hidden character span.
const HiddenClass = "hidden-text"

var (
	// hiddenOpenPattern recognises the opening tag of an editor-styled hidden span.
	// The span ends at its balancing closing tag, which must be on the same line.
	hiddenOpenPattern = regexp.MustCompile(`(?i)<span style="[^"]*(?:color:\s*transparent|background-color:\s*black)[^"]*">`)

	canonicalSpanPattern = regexp.MustCompile(`<span class="` + HiddenClass + `">(.*?)</span>`)
	spanTagPattern       = regexp.MustCompile(`(?i)</?span\b[^>]*>`)
	tagPattern           = regexp.MustCompile(`<[^>]+>`)
	entityPattern        = regexp.MustCompile(`^&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)
)

// NormalizeHidden rewrites every editor-styled hidden span in html into a run of
// single-character spans tagged with HiddenClass. Content without hidden spans is
// returned unchanged, and canonical output is a fixed point.
func NormalizeHidden(html string) string {
	if html == "" {
		return ""
	}
	return replaceHiddenSpans(html, expandHidden)
}

// replaceHiddenSpans replaces every editor-styled hidden span in html, tags
// included, with fn applied to its content. Spans left open are kept.
func replaceHiddenSpans(html string, fn func(inner string) string) string {
	var b strings.Builder
	for {
		from, start, end, to, ok := nextHiddenSpan(html)
		if !ok {
			break
		}
		b.WriteString(html[:from])
		b.WriteString(fn(html[start:end]))
		html = html[to:]
	}
	b.WriteString(html)
	return b.String()
}

// nextHiddenSpan locates the first closed editor-styled hidden span in s. The
// span is s[from:to] and its content is s[start:end].
func nextHiddenSpan(s string) (from, start, end, to int, ok bool) {
	offset := 0
	for {
		loc := hiddenOpenPattern.FindStringIndex(s[offset:])
		if loc == nil {
			return 0, 0, 0, 0, false
		}
		from, start = offset+loc[0], offset+loc[1]
		if closeStart, closeEnd, found := closingSpan(s[start:]); found {
			return from, start, start + closeStart, start + closeEnd, true
		}
		offset = start
	}
}

// closingSpan finds the closing tag that balances a span opened just before s.
// Spans nested inside, canonical ones included, are counted on the way.
func closingSpan(s string) (start, end int, ok bool) {
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[:nl]
	}
	depth := 1
	for _, loc := range spanTagPattern.FindAllStringIndex(s, -1) {
		tag := s[loc[0]:loc[1]]
		switch {
		case tag[1] == '/':
			depth--
			if depth == 0 {
				return loc[0], loc[1], true
			}
		case !strings.HasSuffix(tag, "/>"):
			depth++
		}
	}
	return 0, 0, false
}

// expandHidden wraps each character of inner in a canonical span. Non-span tags
// are kept as they are. Span tags are dropped, so characters that were already
// canonical stay hidden. Stray angle brackets are escaped.
func expandHidden(inner string) string {
	inner = spanTagPattern.ReplaceAllString(inner, "")

	var b strings.Builder
	b.Grow(len(inner) * 32)
	for i := 0; i < len(inner); {
		switch inner[i] {
		case '<':
			if end := strings.IndexByte(inner[i:], '>'); end >= 0 {
				b.WriteString(inner[i : i+end+1])
				i += end + 1
				continue
			}
		case '&':
			if entity := entityPattern.FindString(inner[i:]); entity != "" {
				writeHiddenChar(&b, entity)
				i += len(entity)
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(inner[i:])
		char := inner[i : i+size]
		switch char {
		case "<":
			char = "&lt;"
		case ">":
			char = "&gt;"
		}
		writeHiddenChar(&b, char)
		i += size
	}
	return b.String()
}

func writeHiddenChar(b *strings.Builder, char string) {
	b.WriteString(`<span class="`)
	b.WriteString(HiddenClass)
	b.WriteString(`">`)
	b.WriteString(char)
	b.WriteString(`</span>`)
}

// StripToPlainText removes every tag from html and trims surrounding whitespace.
// Entities are left encoded.
func StripToPlainText(html string) string {
	if html == "" {
		return ""
	}
	return strings.TrimSpace(tagPattern.ReplaceAllString(html, ""))
}

// IsBlank reports whether html carries no text once tags are removed.
func IsBlank(html string) bool {
	return StripToPlainText(html) == ""
}

// HasHidden reports whether html contains hidden text in either form.
func HasHidden(html string) bool {
	if canonicalSpanPattern.MatchString(html) {
		return true
	}
	_, _, _, _, ok := nextHiddenSpan(html)
	return ok
}

// RevealAll removes hidden-text markup from html, leaving the hidden characters as
// ordinary text. Other markup is kept.
func RevealAll(html string) string {
	if html == "" {
		return ""
	}
	out := replaceHiddenSpans(html, func(inner string) string {
		return spanTagPattern.ReplaceAllString(inner, "")
	})
	return canonicalSpanPattern.ReplaceAllString(out, "$1")
}

// MaskHidden renders html as plain text with every hidden character replaced by
// mask. Terminal front ends use it to ask a card without giving the answer away.
func MaskHidden(html, mask string) string {
	if html == "" {
		return ""
	}
	masked := canonicalSpanPattern.ReplaceAllLiteralString(NormalizeHidden(html), mask)
	return StripToPlainText(masked)
}
