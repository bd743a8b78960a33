// Package extract mines contact facts out of raw text, rendered HTML
// and JSON payloads: emails (including obfuscated ones), phone numbers,
// names and titles near an email, pattern-generated address guesses,
// and email-keyed deduplication of assembled contacts.
package extract

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// emailRe is the workhorse pattern for plain addresses in text.
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// quotedRe catches addresses sitting alone inside JS string literals.
	quotedRe = regexp.MustCompile(`['"]([a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,})['"]`)

	// jsonEmailRe catches "email":"..." fragments in inline JSON blobs.
	jsonEmailRe = regexp.MustCompile(`(?i)"e-?mail"\s*:\s*"([^"]+)"`)

	// dataEmailRe catches data-email attribute values.
	dataEmailRe = regexp.MustCompile(`(?i)data-email\s*=\s*["']([^"']+)["']`)

	// cfEmailRe catches CloudFlare-protected addresses.
	cfEmailRe = regexp.MustCompile(`(?i)data-cfemail\s*=\s*["']([0-9a-fA-F]+)["']`)

	// docWriteRe captures document.write arguments so concatenated
	// pieces like 'jo'+'hn@x'+'.com' can be reassembled.
	docWriteRe = regexp.MustCompile(`document\.write\s*\(([^)]*)\)`)

	// junkSuffixes are file extensions that regex-match as TLDs.
	junkSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".css", ".js"}
)

// Emails extracts every email candidate from text, lowercased and
// deduplicated in first-seen order. It is a pure function: running it
// on its own output or on the same input twice yields identical
// results. Candidates are only lightly filtered here; ValidEmail does
// the real vetting.
func Emails(text string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(email string) {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || seen[email] {
			return
		}
		for _, suffix := range junkSuffixes {
			if strings.HasSuffix(email, suffix) {
				return
			}
		}
		seen[email] = true
		out = append(out, email)
	}

	for _, m := range emailRe.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range quotedRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range jsonEmailRe.FindAllStringSubmatch(text, -1) {
		if emailRe.MatchString(m[1]) {
			add(emailRe.FindString(m[1]))
		}
	}
	for _, m := range dataEmailRe.FindAllStringSubmatch(text, -1) {
		if emailRe.MatchString(m[1]) {
			add(emailRe.FindString(m[1]))
		}
	}
	for _, m := range cfEmailRe.FindAllStringSubmatch(text, -1) {
		if decoded, err := DecodeCFEmail(m[1]); err == nil && emailRe.MatchString(decoded) {
			add(emailRe.FindString(decoded))
		}
	}
	for _, m := range docWriteRe.FindAllStringSubmatch(text, -1) {
		for _, e := range emailRe.FindAllString(joinConcat(m[1]), -1) {
			add(e)
		}
	}

	return out
}

// joinConcat flattens a JS string concatenation expression into the
// string it would produce: quotes and plus signs drop out, everything
// else stays.
func joinConcat(expr string) string {
	var b strings.Builder
	for _, r := range expr {
		switch r {
		case '\'', '"', '`', '+', ' ', '\n', '\t':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DecodeCFEmail reverses CloudFlare's email obfuscation: the hex blob's
// first byte is the XOR key for the remaining bytes.
func DecodeCFEmail(encoded string) (string, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode cfemail: %w", err)
	}
	if len(raw) < 2 {
		return "", errors.New("cfemail blob too short")
	}
	key := raw[0]
	decoded := make([]byte, len(raw)-1)
	for i, b := range raw[1:] {
		decoded[i] = b ^ key
	}
	return string(decoded), nil
}
