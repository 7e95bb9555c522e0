package i18n

import (
	"embed"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

var localeFiles = []string{"active.en.toml", "active.pt.toml"}

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
}

// NewTranslator loads the embedded bundles. defaultLocale (e.g. "pt" or
// "pt-BR") is used when a request asks for nothing we have.
func NewTranslator(defaultLocale string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("i18n: failed to load %s: %w", file, err)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: matchLoaded(bundle, defaultLocale),
	}, nil
}

// matchLoaded maps locale onto a loaded bundle, so "pt-BR" becomes "pt".
// Anything unparsable or unmatched means English.
func matchLoaded(bundle *i18n.Bundle, locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	tags := bundle.LanguageTags()
	_, index, confidence := language.NewMatcher(tags).Match(tag)
	if confidence == language.No {
		return language.English
	}
	return tags[index]
}

// DefaultLanguage is the fallback tag.
func (t *Translator) DefaultLanguage() language.Tag {
	return t.defaultLanguage
}

// T renders the message identified by key. locale may be a plain tag or a
// full Accept-Language header. Unknown locales fall back to the default
// language, unknown keys to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return key
	}
	return msg
}
