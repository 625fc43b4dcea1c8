package dataset

import (
	"strings"

	"golang.org/x/text/language"
)

// DetectLanguage infers a caption file's language by matching catalog
// dataset ids against its path. Returns the dataset's base language
// subtag ("zh-CN" becomes "zh"), or empty when the catalog is missing,
// unreadable, or matches nothing.
func DetectLanguage(root, path string) string {
	m, err := Open(root)
	if err != nil {
		return ""
	}
	return m.DetectLanguage(path)
}

// DetectLanguage is the catalog-backed form of the free function.
func (m *Manager) DetectLanguage(path string) string {
	for _, e := range m.catalog.Datasets {
		if e.ID != "" && strings.Contains(path, e.ID) {
			return baseLanguage(e.Language)
		}
	}
	return ""
}

// baseLanguage reduces a BCP 47 tag to its primary subtag. Unparseable
// tags pass through unchanged.
func baseLanguage(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	base, conf := tag.Base()
	if conf == language.No {
		return lang
	}
	return base.String()
}
