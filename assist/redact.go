package assist

import "regexp"

const redactedPlaceholder = "[REDACTED]"

// Redactor replaces credentials in text that is shown to chat users, such
// as API error messages that echo part of a key.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a Redactor with common credential patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`sk-[A-Za-z0-9_*\-]{8,}`),
			regexp.MustCompile(`[A-Za-z0-9_\-]{23,28}\.[A-Za-z0-9_\-]{6,7}\.[A-Za-z0-9_\-]{27,}`),
			regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]{16,}`),
			regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
			regexp.MustCompile(`gh[ps]_[A-Za-z0-9_]{36,}`),
			regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`),
			regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[=:]\s*['"]?[A-Za-z0-9]{16,}['"]?`),
		},
	}
}

// Redact replaces every credential in s with [REDACTED] and reports whether
// anything was replaced.
func (r *Redactor) Redact(s string) (string, bool) {
	result := s
	redacted := false
	for _, p := range r.patterns {
		if p.MatchString(result) {
			result = p.ReplaceAllString(result, redactedPlaceholder)
			redacted = true
		}
	}
	return result, redacted
}
