package extract

import (
	"regexp"
	"strings"

	"github.com/mcnijman/go-emailaddress"

	"github.com/use-agent/prospect/config"
)

// versionDomainRe matches package@version artifacts from JS bundles,
// e.g. core-js@3.30.1: the "domain" is just dotted digits.
var versionDomainRe = regexp.MustCompile(`^\d+(\.\d+)+$`)

// Validator vets email candidates against the heuristics tables.
type Validator struct {
	blockedDomains []string
	rolePrefixes   []string
	allowWords     []string
}

// NewValidator builds a Validator from h, falling back to the built-in
// heuristics when h is nil.
func NewValidator(h *config.Heuristics) *Validator {
	if h == nil {
		h = config.DefaultHeuristics()
	}
	return &Validator{
		blockedDomains: h.BlockedDomains,
		rolePrefixes:   h.RolePrefixes,
		allowWords:     h.RoleAllowWords,
	}
}

// Valid reports whether email is worth keeping as a contact address.
func (v *Validator) Valid(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.Count(email, "@") != 1 {
		return false
	}
	if strings.Contains(email, "%") {
		return false
	}
	for _, suffix := range junkSuffixes {
		if strings.HasSuffix(email, suffix) {
			return false
		}
	}

	parsed, err := emailaddress.Parse(email)
	if err != nil {
		return false
	}
	local, domain := parsed.LocalPart, parsed.Domain

	if versionDomainRe.MatchString(domain) {
		return false
	}
	for _, blocked := range v.blockedDomains {
		if domain == blocked || strings.HasSuffix(domain, "."+blocked) {
			return false
		}
	}
	for _, prefix := range v.rolePrefixes {
		if local == prefix {
			return v.allowed(email)
		}
	}
	return true
}

// allowed reports whether a role-prefixed address is rescued by an
// allowlist keyword in the address or its domain.
func (v *Validator) allowed(email string) bool {
	for _, word := range v.allowWords {
		if strings.Contains(email, word) {
			return true
		}
	}
	return false
}

// Filter returns the members of emails that pass Valid, in order.
func (v *Validator) Filter(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if v.Valid(e) {
			out = append(out, e)
		}
	}
	return out
}

var defaultValidator = NewValidator(nil)

// ValidEmail vets email with the built-in heuristics.
func ValidEmail(email string) bool {
	return defaultValidator.Valid(email)
}
