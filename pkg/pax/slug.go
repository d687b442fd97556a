package pax

import (
	"strings"
	"unicode"
)

// Slugify turns a display name into a URL-safe slug, e.g.
// "Hello World" -> "hello-world". Characters outside [a-z0-9] and whitespace
// are dropped, so distinct names may share a slug ("José" and "Jos").
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(name))
	inSpace := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			inSpace = false
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// Unslugify formats a slug for display, e.g. "hello-world" -> "Hello World".
// It is not the inverse of Slugify.
func Unslugify(slug string) string {
	s := strings.TrimSpace(slug)

	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range s {
		if r == '-' {
			if !prevHyphen {
				b.WriteByte(' ')
			}
			prevHyphen = true
			continue
		}
		prevHyphen = false
		b.WriteRune(r)
	}

	return titleWords(strings.TrimSpace(b.String()))
}

// titleWords upper-cases the first ASCII word character after each word
// boundary and leaves everything else untouched.
func titleWords(s string) string {
	out := []byte(s)
	prevWord := false
	for i, c := range out {
		word := isWordByte(c)
		if word && !prevWord && c >= 'a' && c <= 'z' {
			out[i] = c - 'a' + 'A'
		}
		prevWord = word
	}
	return string(out)
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
