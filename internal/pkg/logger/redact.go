package logger

import (
	"regexp"
	"strings"
)

// The only personal data the catalog logs are admin e-mail addresses: the
// actor of an import or audit event and the address of a login attempt.
// Values under an identity key are masked whole; addresses inside any other
// value (error texts, row messages) are masked in place. OAuth material is
// never written at all.

const redacted = "[redacted]"

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// identityKeys hold an admin's e-mail as the whole value.
var identityKeys = map[string]bool{
	"actor":      true,
	"actor_id":   true,
	"created_by": true,
	"email":      true,
	"admin":      true,
}

// secretKeys are dropped to a placeholder regardless of their value.
var secretKeys = map[string]bool{
	"code":          true,
	"state":         true,
	"token":         true,
	"access_token":  true,
	"refresh_token": true,
	"session_id":    true,
	"cookie":        true,
}

// RedactEmail masks the local part of an address and keeps the domain, so
// logs still show which school an admin belongs to.
// "john.doe@example.com" → "jo***@example.com"; local parts of two
// characters or less are masked fully. Values without an "@" are returned
// unchanged; they are system actors such as a worker name, not addresses.
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	if domain == "" || strings.Contains(domain, "@") {
		return "***@***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}

func redactPIIValue(key, val string) string {
	key = strings.ToLower(key)
	switch {
	case val == "":
		return val
	case secretKeys[key]:
		return redacted
	case identityKeys[key] || strings.HasSuffix(key, "_email"):
		return RedactEmail(strings.TrimSpace(val))
	}
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
