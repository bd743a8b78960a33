package extract

import "strings"

// honorifics are stripped before tokenizing a name.
var honorifics = map[string]bool{
	"dr": true, "mr": true, "mrs": true, "ms": true, "prof": true, "coach": true,
}

// PatternEmails synthesizes likely addresses for a person at a domain,
// most probable pattern first: first.last@, firstlast@, flast@, lastf@,
// last.first@, then the coach.last@ role variant. Returns nil unless
// the name has at least two usable tokens. The caller treats the first
// entry as the primary generated email and the rest as alternates.
func PatternEmails(name, domain string) []string {
	tokens := nameTokens(name)
	domain = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(domain, "www.")))
	if len(tokens) < 2 || domain == "" {
		return nil
	}
	first, last := tokens[0], tokens[len(tokens)-1]

	seen := make(map[string]bool)
	var out []string
	add := func(local string) {
		addr := local + "@" + domain
		if !seen[addr] {
			seen[addr] = true
			out = append(out, addr)
		}
	}

	add(first + "." + last)
	add(first + last)
	add(first[:1] + last)
	add(last + first[:1])
	add(last + "." + first)
	add("coach." + last)
	return out
}

// nameTokens lowercases and splits a display name, dropping honorifics,
// initials and punctuation: "Dr. John A. Smith-Jones" -> [john smithjones].
func nameTokens(name string) []string {
	fields := strings.Fields(strings.ToLower(name))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		var b strings.Builder
		for _, r := range f {
			if r >= 'a' && r <= 'z' {
				b.WriteRune(r)
			}
		}
		token := b.String()
		if len(token) < 2 || honorifics[token] {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
