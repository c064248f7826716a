package gui

import (
	"context"
	"errors"
	"fmt"

	"github.com/ramonehamilton/flashdeck/internal/i18n"
	"github.com/ramonehamilton/flashdeck/internal/richtext"
	"github.com/ramonehamilton/flashdeck/internal/storage/repository"
)

// SettingsFacade handles theme and language preferences for the GUI.
type SettingsFacade struct {
	services *Services
}

// NewSettingsFacade creates a new SettingsFacade with the given services.
func NewSettingsFacade(services *Services) *SettingsFacade {
	return &SettingsFacade{
		services: services,
	}
}

// AppSettings represents all user-configurable settings.
type AppSettings struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

// Appearance is everything the frontend needs to draw in the current theme.
type Appearance struct {
	Theme          string           `json:"theme"`
	Palette        richtext.Palette `json:"palette"`
	HiddenStyle    string           `json:"hiddenStyle"`
	RevealedStyle  string           `json:"revealedStyle"`
	HiddenClass    string           `json:"hiddenClass"`
	HiddenTextRule richtext.Style   `json:"hiddenTextRule"`
}

func (s *SettingsFacade) defaults() AppSettings {
	settings := AppSettings{Theme: richtext.ThemeLight, Language: i18n.DefaultLanguage}
	if s.services.Config != nil {
		settings.Theme = s.services.Config.App.Theme
		settings.Language = i18n.Normalize(s.services.Config.App.Language)
	}
	return settings
}

// GetAllSettings returns stored preferences over the configured defaults.
func (s *SettingsFacade) GetAllSettings(ctx context.Context) (*AppSettings, error) {
	settings := s.defaults()
	if s.services.Storage == nil {
		return &settings, nil
	}

	repo := s.services.Storage.Settings()
	for key, target := range map[string]*string{
		repository.SettingTheme:    &settings.Theme,
		repository.SettingLanguage: &settings.Language,
	} {
		if err := repo.GetTyped(ctx, key, target); err != nil && !errors.Is(err, repository.ErrSettingNotFound) {
			return nil, &AppError{Message: fmt.Sprintf("Failed to load settings: %v", err), Err: err}
		}
	}
	return &settings, nil
}

// SetTheme stores the theme and returns the appearance for it.
func (s *SettingsFacade) SetTheme(ctx context.Context, theme string) (*Appearance, error) {
	if theme != richtext.ThemeLight && theme != richtext.ThemeDark {
		return nil, &AppError{Message: fmt.Sprintf("Unknown theme: %s", theme)}
	}
	if err := s.save(ctx, repository.SettingTheme, theme); err != nil {
		return nil, err
	}
	return s.appearance(theme), nil
}

// ToggleTheme switches between light and dark.
func (s *SettingsFacade) ToggleTheme(ctx context.Context) (*Appearance, error) {
	settings, err := s.GetAllSettings(ctx)
	if err != nil {
		return nil, err
	}
	next := richtext.ThemeDark
	if settings.Theme == richtext.ThemeDark {
		next = richtext.ThemeLight
	}
	return s.SetTheme(ctx, next)
}

// GetAppearance returns the palette and hidden-text styles of the stored theme.
func (s *SettingsFacade) GetAppearance(ctx context.Context) (*Appearance, error) {
	settings, err := s.GetAllSettings(ctx)
	if err != nil {
		return nil, err
	}
	return s.appearance(settings.Theme), nil
}

func (s *SettingsFacade) appearance(theme string) *Appearance {
	palette := richtext.PaletteFor(theme)
	return &Appearance{
		Theme:          theme,
		Palette:        palette,
		HiddenStyle:    richtext.StyleSheet(false, palette),
		RevealedStyle:  richtext.StyleSheet(true, palette),
		HiddenClass:    richtext.HiddenClass,
		HiddenTextRule: richtext.HiddenStyle(false, palette),
	}
}

// SetLanguage activates and stores a language. It returns the normalized code.
func (s *SettingsFacade) SetLanguage(ctx context.Context, lang string) (string, error) {
	lang = i18n.Normalize(lang)
	if s.services.Translator != nil {
		s.services.Translator.SetLanguage(lang)
	}
	if err := s.save(ctx, repository.SettingLanguage, lang); err != nil {
		return "", err
	}
	return lang, nil
}

// ToggleLanguage switches between Korean and English.
func (s *SettingsFacade) ToggleLanguage(ctx context.Context) (string, error) {
	next := i18n.English
	if s.services.Translator != nil && s.services.Translator.Language() == i18n.English {
		next = i18n.Korean
	}
	return s.SetLanguage(ctx, next)
}

// GetStrings returns the UI strings of the active language.
func (s *SettingsFacade) GetStrings() map[string]string {
	if s.services.Translator == nil {
		return map[string]string{}
	}
	return s.services.Translator.Strings()
}

func (s *SettingsFacade) save(ctx context.Context, key, value string) error {
	if s.services.Storage == nil {
		return nil
	}
	if err := s.services.Storage.Settings().Set(ctx, key, value); err != nil {
		return &AppError{Message: s.services.message("saveFailed", "Could not save your changes", nil), Err: err}
	}
	return nil
}
