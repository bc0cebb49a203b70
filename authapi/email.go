package authapi

import "strings"

// MaskEmail hides all but the first three characters of the local part, for
// display and logs. Inputs that are not of the form local@domain come back
// unchanged.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return email
	}
	// domain stops at a second "@", matching a plain split
	if i := strings.IndexByte(domain, '@'); i >= 0 {
		domain = domain[:i]
	}

	runes := []rune(local)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes) + "*****@" + domain
}
