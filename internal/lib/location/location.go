// Package location реализует проверку происхождения артефакта модели.
//
// Значение url_or_path считается корректным, если это существующий
// локальный путь, file:// URL, указывающий на существующий путь,
// или URL со схемой и хостом.
package location

import (
	"net/url"
	"os"
	"strings"
)

// IsValid проверяет, что pathOrURL указывает на существующий локальный путь
// или является корректным URL.
func IsValid(pathOrURL string) bool {
	if pathOrURL == "" {
		return false
	}

	if _, err := os.Stat(pathOrURL); err == nil {
		return true
	}

	if local, ok := strings.CutPrefix(pathOrURL, "file://"); ok {
		if _, err := os.Stat(local); err == nil {
			return true
		}
	}

	u, err := url.Parse(pathOrURL)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
