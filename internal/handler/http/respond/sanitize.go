package respond

import (
	"regexp"
)

var (
	// apiKey=... in a query string, as logged from a provider URL
	apiKeyQueryPattern = regexp.MustCompile(`(?i)(api_?key=)[^&\s"']+`)

	// X-Api-Key: ... in a dumped header
	apiKeyHeaderPattern = regexp.MustCompile(`(?i)(x-api-key:\s*)\S+`)

	// user:password@ in a DSN
	dsnPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError returns err's message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}

// Sanitize masks API keys and DSN passwords in msg.
func Sanitize(msg string) string {
	msg = apiKeyQueryPattern.ReplaceAllString(msg, "${1}****")
	msg = apiKeyHeaderPattern.ReplaceAllString(msg, "${1}****")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
