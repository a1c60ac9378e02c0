package ui

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/term"
)

var (
	unicodeOnce sync.Once
	unicodeOK   bool
)

// UnicodeTerminal reports whether stderr can render Unicode glyphs
// (check marks, ellipsis). Returns false when output is piped,
// redirected, TERM is "dumb", or on Windows without Windows Terminal.
//
// Legacy Windows consoles cannot render these glyphs even with
// SetConsoleOutputCP(65001) because the default fonts lack them.
// Windows Terminal (detected via WT_SESSION) handles them correctly.
func UnicodeTerminal() bool {
	unicodeOnce.Do(func() {
		if os.Getenv("TERM") == "dumb" {
			return
		}
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			return
		}
		if runtime.GOOS == "windows" {
			unicodeOK = os.Getenv("WT_SESSION") != ""
			return
		}
		unicodeOK = true
	})
	return unicodeOK
}

// IsTTY reports whether stdout is a terminal. Writers use this to pick
// styled or plain output.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Icon returns unicode when the terminal supports it, ascii otherwise.
// Use at every call site that renders special characters:
// ui.Icon("✔", "[ok]")
func Icon(unicode, ascii string) string {
	if UnicodeTerminal() {
		return unicode
	}
	return ascii
}

// SanitizeString strips glyphs the terminal cannot render from s. On
// Unicode-capable terminals, returns s unchanged. Compiler messages can
// quote arbitrary source text, so console output goes through this.
func SanitizeString(s string) string {
	if UnicodeTerminal() {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r < 0x80:
			b.WriteByte(s[i])
		case isVariationSelector(r):
			// drop silently
		case isSafeForLegacy(r):
			b.WriteRune(r)
		default:
			// emoji, block chars, symbols
		}
		i += size
	}
	return b.String()
}

// Sanitizef formats a string and sanitizes it for the current terminal.
func Sanitizef(format string, args ...interface{}) string {
	return SanitizeString(fmt.Sprintf(format, args...))
}

// Fprintf writes to w with terminal-appropriate sanitization.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprint(w, Sanitizef(format, args...))
}

// isVariationSelector returns true for Unicode variation selectors
// that modify the preceding character's display (e.g., U+FE0F).
func isVariationSelector(r rune) bool {
	return r >= 0xFE00 && r <= 0xFE0F
}

// isSafeForLegacy returns true for runes that legacy consoles can
// typically render: Latin scripts and common punctuation. Excludes
// emoji, box-drawing and block elements.
func isSafeForLegacy(r rune) bool {
	if r <= 0xFF {
		return true
	}
	return unicode.Is(unicode.Latin, r)
}
