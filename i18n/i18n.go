// Package i18n provides internationalization support for figloc itself.
//
// It wraps the gotext library to provide a simple T() function for
// figloc's user-facing strings. Translations are embedded in the binary
// via //go:embed and loaded at startup via Init().
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the .po translation files.
// Directory structure: locales/{lang}/LC_MESSAGES/figloc.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for figloc.
const domain = "figloc"

var po *gotext.Locale

// Init initializes the i18n system. If lang is empty, it auto-detects from
// the environment variables LANGUAGE, LC_ALL, LC_MESSAGES, LANG (in that
// order, matching GNU gettext behavior). Call once at program startup.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a string. If no translation is available, returns the
// original string unchanged (standard gettext passthrough behavior).
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// detectLanguage reads environment variables to determine the user's
// preferred language, following GNU gettext conventions.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE can be a colon-separated list; take the first.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// Strip encoding suffix (e.g. "ru_RU.UTF-8" -> "ru_RU").
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
