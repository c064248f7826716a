// Package i18n holds the Korean and English message catalogs.
//
// Message ids are the screen string keys and the Code of every models.Error,
// so domain errors can be shown in the active language.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// Supported language codes. "kr" is the app's historical code for Korean.
const (
	Korean  = "kr"
	English = "en"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = Korean

//go:embed locales/*.toml
var localeFS embed.FS

// Translator localizes messages into the active language. It is safe for
// concurrent use.
type Translator struct {
	bundle *goi18n.Bundle
	ids    []string

	mu        sync.RWMutex
	lang      string
	localizer *goi18n.Localizer
}

// New loads the embedded catalogs and activates lang.
func New(lang string) (*Translator, error) {
	bundle := goi18n.NewBundle(language.Korean)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		mf, err := bundle.LoadMessageFileFS(localeFS, path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", e.Name(), err)
		}
		for _, m := range mf.Messages {
			if !seen[m.ID] {
				seen[m.ID] = true
				ids = append(ids, m.ID)
			}
		}
	}
	slices.Sort(ids)

	t := &Translator{bundle: bundle, ids: ids}
	t.SetLanguage(lang)
	return t, nil
}

// Normalize maps a configured language code to a supported one. Anything that
// is not English falls back to Korean.
func Normalize(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "en", "en-us", "en-gb", "english":
		return English
	default:
		return Korean
	}
}

func tagFor(lang string) language.Tag {
	if lang == English {
		return language.English
	}
	return language.Korean
}

// SetLanguage switches the active language and returns the normalized code.
func (t *Translator) SetLanguage(lang string) string {
	lang = Normalize(lang)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lang = lang
	t.localizer = goi18n.NewLocalizer(t.bundle, tagFor(lang).String())
	return lang
}

// Toggle switches between Korean and English and returns the new code.
func (t *Translator) Toggle() string {
	if t.Language() == Korean {
		return t.SetLanguage(English)
	}
	return t.SetLanguage(Korean)
}

// Language returns the active language code.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// T localizes id with optional template data. Unknown ids are returned as is.
func (t *Translator) T(id string, data map[string]any) string {
	t.mu.RLock()
	localizer := t.localizer
	t.mu.RUnlock()

	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}

// Strings returns every catalog message in the active language, keyed by id.
func (t *Translator) Strings() map[string]string {
	out := make(map[string]string, len(t.ids))
	for _, id := range t.ids {
		out[id] = t.T(id, nil)
	}
	return out
}

// IDs returns the sorted message ids.
func (t *Translator) IDs() []string {
	return slices.Clone(t.ids)
}

// ErrorMessage localizes a domain error by its code. Other errors fall back
// to the generic message.
func (t *Translator) ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		if msg := t.T(domainErr.Code, nil); msg != domainErr.Code {
			return msg
		}
		return domainErr.Message
	}
	return t.T("unexpectedError", nil)
}
