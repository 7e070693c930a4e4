package ui

// Translations maps label keys to display strings. A nil map is valid
// and leaves every label untranslated.
type Translations map[string]string

// T looks up a user-facing label, falling back to the key itself so
// missing entries degrade to English rather than blank chrome.
func (t Translations) T(key string) string {
	if s, ok := t[key]; ok {
		return s
	}
	return key
}
