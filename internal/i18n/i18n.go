// internal/i18n/i18n.go
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localeFS embed.FS

type Translator struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

// New loads the bundled locales. defaultLang is used whenever a key is missing
// from the requested language.
func New(defaultLang string) (*Translator, error) {
	if defaultLang == "" {
		defaultLang = "en"
	}

	t := &Translator{
		translations: make(map[string]map[string]string),
		defaultLang:  defaultLang,
	}
	if err := t.loadTranslations(); err != nil {
		return nil, err
	}
	if _, ok := t.translations[defaultLang]; !ok {
		return nil, fmt.Errorf("default locale %q is not bundled", defaultLang)
	}
	return t, nil
}

func (t *Translator) loadTranslations() error {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("failed to list locales: %w", err)
	}

	for _, entry := range entries {
		file := entry.Name()
		if !strings.HasSuffix(file, ".json") {
			continue
		}

		data, err := localeFS.ReadFile(path.Join("locales", file))
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", file, err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", file, err)
		}

		t.mu.Lock()
		t.translations[strings.TrimSuffix(file, ".json")] = translations
		t.mu.Unlock()
	}

	return nil
}

func (t *Translator) T(lang, key string, args ...interface{}) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if text, ok := t.lookup(lang, key); ok {
		return format(text, args)
	}

	// Fallback to default language
	if lang != t.defaultLang {
		if text, ok := t.lookup(t.defaultLang, key); ok {
			return format(text, args)
		}
	}

	return key
}

func (t *Translator) lookup(lang, key string) (string, bool) {
	translations, ok := t.translations[lang]
	if !ok {
		return "", false
	}
	text, ok := translations[key]
	return text, ok
}

func format(text string, args []interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

func (t *Translator) DefaultLanguage() string {
	return t.defaultLang
}

func (t *Translator) SupportedLanguages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	langs := make([]string, 0, len(t.translations))
	for lang := range t.translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Resolve picks the first supported language from an Accept-Language header,
// e.g. "ar-IQ,ar;q=0.9,en;q=0.8".
func (t *Translator) Resolve(acceptLanguage string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag == "" {
			continue
		}
		tag = strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
		base := strings.Split(tag, "-")[0]
		if _, ok := t.translations[base]; ok {
			return base
		}
	}
	return t.defaultLang
}
