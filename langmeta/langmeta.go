// Package langmeta provides a shared language metadata registry (English
// and native names, emoji flags) used for prompt construction and CLI
// output.
package langmeta

import "strings"

// Meta describes language display metadata. Name is the English name — it
// is what translation prompts interpolate; Native is what the CLI shows
// next to the code.
type Meta struct {
	Name   string
	Native string
	Flag   string
}

// Registry contains canonical language metadata. Locale variants such as
// pt-BR are resolved in Resolve via normalization and base fallback.
var Registry = map[string]Meta{
	"ar":    {Name: "Arabic", Native: "العربية", Flag: "🇸🇦"},
	"bg":    {Name: "Bulgarian", Native: "Български", Flag: "🇧🇬"},
	"cs":    {Name: "Czech", Native: "Čeština", Flag: "🇨🇿"},
	"da":    {Name: "Danish", Native: "Dansk", Flag: "🇩🇰"},
	"de":    {Name: "German", Native: "Deutsch", Flag: "🇩🇪"},
	"el":    {Name: "Greek", Native: "Ελληνικά", Flag: "🇬🇷"},
	"en":    {Name: "English", Native: "English", Flag: "🇺🇸"},
	"en-GB": {Name: "English (UK)", Native: "English (UK)", Flag: "🇬🇧"},
	"es":    {Name: "Spanish", Native: "Español", Flag: "🇪🇸"},
	"es-MX": {Name: "Spanish (Mexico)", Native: "Español (México)", Flag: "🇲🇽"},
	"et":    {Name: "Estonian", Native: "Eesti", Flag: "🇪🇪"},
	"fi":    {Name: "Finnish", Native: "Suomi", Flag: "🇫🇮"},
	"fr":    {Name: "French", Native: "Français", Flag: "🇫🇷"},
	"fr-CA": {Name: "French (Canada)", Native: "Français (Canada)", Flag: "🇨🇦"},
	"he":    {Name: "Hebrew", Native: "עברית", Flag: "🇮🇱"},
	"hi":    {Name: "Hindi", Native: "हिन्दी", Flag: "🇮🇳"},
	"hu":    {Name: "Hungarian", Native: "Magyar", Flag: "🇭🇺"},
	"id":    {Name: "Indonesian", Native: "Bahasa Indonesia", Flag: "🇮🇩"},
	"it":    {Name: "Italian", Native: "Italiano", Flag: "🇮🇹"},
	"ja":    {Name: "Japanese", Native: "日本語", Flag: "🇯🇵"},
	"ko":    {Name: "Korean", Native: "한국어", Flag: "🇰🇷"},
	"lt":    {Name: "Lithuanian", Native: "Lietuvių", Flag: "🇱🇹"},
	"lv":    {Name: "Latvian", Native: "Latviešu", Flag: "🇱🇻"},
	"nb":    {Name: "Norwegian Bokmål", Native: "Norsk bokmål", Flag: "🇳🇴"},
	"nl":    {Name: "Dutch", Native: "Nederlands", Flag: "🇳🇱"},
	"pl":    {Name: "Polish", Native: "Polski", Flag: "🇵🇱"},
	"pt":    {Name: "Portuguese", Native: "Português", Flag: "🇵🇹"},
	"pt-BR": {Name: "Portuguese (Brazil)", Native: "Português (Brasil)", Flag: "🇧🇷"},
	"ro":    {Name: "Romanian", Native: "Română", Flag: "🇷🇴"},
	"ru":    {Name: "Russian", Native: "Русский", Flag: "🇷🇺"},
	"sk":    {Name: "Slovak", Native: "Slovenčina", Flag: "🇸🇰"},
	"sv":    {Name: "Swedish", Native: "Svenska", Flag: "🇸🇪"},
	"th":    {Name: "Thai", Native: "ไทย", Flag: "🇹🇭"},
	"tr":    {Name: "Turkish", Native: "Türkçe", Flag: "🇹🇷"},
	"uk":    {Name: "Ukrainian", Native: "Українська", Flag: "🇺🇦"},
	"vi":    {Name: "Vietnamese", Native: "Tiếng Việt", Flag: "🇻🇳"},
	"zh":    {Name: "Chinese (Simplified)", Native: "简体中文", Flag: "🇨🇳"},
	"zh-TW": {Name: "Chinese (Traditional)", Native: "繁體中文", Flag: "🇹🇼"},
}

// Resolve returns best-effort metadata for a language code, supporting
// variants like pt_BR, pt-BR, and base-language fallback. Unknown codes
// yield a Meta whose names are the code itself, so prompts always have
// something to interpolate.
func Resolve(lang string) Meta {
	code := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")

	if m, ok := Registry[code]; ok {
		return m
	}

	// Normalize case: base lowercase, region uppercase.
	if idx := strings.IndexByte(code, '-'); idx > 0 {
		norm := strings.ToLower(code[:idx]) + "-" + strings.ToUpper(code[idx+1:])
		if m, ok := Registry[norm]; ok {
			return m
		}
		// Region fallback.
		if m, ok := Registry[strings.ToLower(code[:idx])]; ok {
			return m
		}
	} else if m, ok := Registry[strings.ToLower(code)]; ok {
		return m
	}

	return Meta{Name: lang, Native: lang}
}

// Name returns the English name for a language code.
func Name(lang string) string {
	return Resolve(lang).Name
}
