package localize

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Xuanwo/go-locale"
	"github.com/pkg/errors"
)

// AssetLoader fetches an embedded asset by path, see data.Asset.
type AssetLoader func(path string) ([]byte, error)

type Strings map[string]string

type stringsSet map[string]Strings

// Localizer serves user-facing strings. English is always loaded and acts
// as the fallback for keys missing from the active language.
type Localizer struct {
	loadAsset AssetLoader
	lang      string
	strings   stringsSet
}

func NewLocalizer(loadAsset AssetLoader) (*Localizer, error) {
	l := &Localizer{
		loadAsset: loadAsset,
		lang:      "en",
		strings:   make(stringsSet),
	}

	err := l.loadLang("en")
	if err != nil {
		return nil, errors.WithMessage(err, "loading base locale")
	}

	return l, nil
}

// DetectLang asks the OS for the user's language and switches to it when a
// matching string table ships with the binary. Failure to detect or a
// missing table is not an error, English just stays active.
func (l *Localizer) DetectLang() {
	tag, err := locale.Detect()
	if err != nil {
		log.Printf("Could not detect system locale: %v", err)
		return
	}

	lang := strings.Replace(tag.String(), "-", "_", -1)
	for _, candidate := range []string{lang, baseLang(lang)} {
		if candidate == "en" {
			return
		}
		if err := l.loadLang(candidate); err == nil {
			log.Printf("Switching to lang (%s)", candidate)
			l.lang = candidate
			return
		}
	}
}

func (l *Localizer) loadLang(lang string) error {
	assetPath := fmt.Sprintf("locales/%s.json", lang)

	bs, err := l.loadAsset(assetPath)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("no string table for (%s)", lang))
	}

	table := Strings{}
	err = json.Unmarshal(bs, &table)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("parsing string table for (%s)", lang))
	}

	l.strings[lang] = table
	return nil
}

type Replacements map[string]string

// T looks a key up in the active language, then in English. Unknown keys
// come back verbatim so a missing string never hides a message entirely.
func (l *Localizer) T(key string, args ...Replacements) string {
	for _, lang := range []string{l.lang, "en"} {
		table := l.strings[lang]
		rule, ok := table[key]
		if !ok {
			continue
		}

		result := rule
		if len(args) > 0 {
			for k, v := range args[0] {
				result = strings.Replace(result, "{{"+k+"}}", v, -1)
			}
		}

		return result
	}

	return key
}

func baseLang(lang string) string {
	if i := strings.IndexByte(lang, '_'); i > 0 {
		return lang[:i]
	}
	return lang
}
