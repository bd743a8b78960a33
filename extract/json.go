package extract

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/ysmood/gson"

	"github.com/use-agent/prospect/models"
)

// maxJSONDepth bounds the value walk. API payloads nest rosters a few
// levels down at most; anything deeper is framework noise.
const maxJSONDepth = 5

// Key keyword families for classifying JSON leaves. Checked in order,
// so "email_address" lands in the email family, not address.
var (
	emailKeys   = []string{"mail"}
	nameKeys    = []string{"name", "title", "organization", "company"}
	phoneKeys   = []string{"phone", "tel", "mobile", "contact"}
	urlKeys     = []string{"website", "url", "site", "web", "link"}
	addressKeys = []string{"address", "street", "city", "state", "zip"}
)

// MineJSONString parses s and mines it. Invalid JSON yields empty data,
// never an error: captured bodies are best-effort input.
func MineJSONString(s string) *models.ExtractedData {
	if !json.Valid([]byte(s)) {
		return &models.ExtractedData{}
	}
	return MineJSON(gson.NewFrom(s))
}

// MineJSON walks a decoded JSON value collecting contact facts. Keys
// route values into the email/name/phone/url buckets; string leaves are
// additionally shape-tested regardless of their key, so an email hiding
// under "description" is still found. The walk stops at maxJSONDepth.
func MineJSON(doc gson.JSON) *models.ExtractedData {
	data := &models.ExtractedData{}
	mineValue(doc, "", 0, data)
	return data
}

func mineValue(j gson.JSON, key string, depth int, out *models.ExtractedData) {
	if depth > maxJSONDepth {
		return
	}
	switch j.Val().(type) {
	case map[string]interface{}:
		// The object's values sit one level down; stop before reading
		// them past the cutoff.
		if depth >= maxJSONDepth {
			return
		}
		children := j.Map()
		recordContext(children, out)
		// Sorted keys keep extraction order stable across runs.
		keys := make([]string, 0, len(children))
		for k := range children {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			mineValue(children[k], strings.ToLower(k), depth+1, out)
		}
	case []interface{}:
		for _, child := range j.Arr() {
			mineValue(child, key, depth+1, out)
		}
	case string:
		mineString(key, j.Str(), out)
	}
}

func mineString(key, value string, out *models.ExtractedData) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	switch {
	case matchesAny(key, emailKeys):
		if emailRe.MatchString(value) {
			out.AddEmail(emailRe.FindString(value))
		}
	case matchesAny(key, nameKeys):
		if plausibleName(value) {
			out.AddName(value)
		}
	case matchesAny(key, phoneKeys):
		if phoneShaped(value) {
			out.AddPhone(value)
		}
	case matchesAny(key, urlKeys):
		if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
			out.AddURL(value)
		}
	case matchesAny(key, addressKeys):
		out.AddContext("address: " + value)
	}

	// Shape tests run regardless of the key.
	if emailRe.MatchString(value) {
		out.AddEmail(emailRe.FindString(value))
	} else if phoneShaped(value) {
		out.AddPhone(value)
	} else if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		out.AddURL(value)
	}
}

// recordContext emits a summary line for objects that look like a
// person record, pairing whatever email/name/title/phone leaves sit
// side by side. A later pass matches names to emails through these.
func recordContext(children map[string]gson.JSON, out *models.ExtractedData) {
	keys := make([]string, 0, len(children))
	for k := range children {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var email, name, title, phone string
	for _, k := range keys {
		child := children[k]
		s, ok := child.Val().(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		s = strings.TrimSpace(s)
		key := strings.ToLower(k)
		switch {
		case matchesAny(key, emailKeys) && emailRe.MatchString(s):
			email = strings.ToLower(emailRe.FindString(s))
		case strings.Contains(key, "title") || strings.Contains(key, "position") || strings.Contains(key, "role"):
			title = s
		case strings.Contains(key, "name") && plausibleName(s):
			name = s
		case matchesAny(key, phoneKeys) && phoneShaped(s):
			phone = s
		}
	}
	if email == "" && (name == "" || phone == "") {
		return
	}
	parts := make([]string, 0, 4)
	if email != "" {
		parts = append(parts, "email: "+email)
	}
	if name != "" {
		parts = append(parts, "name: "+name)
	}
	if title != "" {
		parts = append(parts, "title: "+title)
	}
	if phone != "" {
		parts = append(parts, "phone: "+phone)
	}
	out.AddContext(strings.Join(parts, " | "))
}

func matchesAny(key string, words []string) bool {
	for _, w := range words {
		if strings.Contains(key, w) {
			return true
		}
	}
	return false
}

func plausibleName(s string) bool {
	if len(s) < 2 || len(s) > 80 {
		return false
	}
	if strings.Contains(s, "@") || strings.Contains(s, "://") {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			hasLetter = true
			break
		}
	}
	return hasLetter
}

func phoneShaped(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == '.' || r == '(' || r == ')' || r == ' ':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}
