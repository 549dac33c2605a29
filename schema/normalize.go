package schema

import "strings"

// ValidateUser ensures a prompt user matches [a-z0-9._-] with no normalization.
func ValidateUser(user string) error {
	if user == "" || strings.TrimSpace(user) != user {
		return ErrInvalidUser
	}
	for _, r := range user {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '.' || r == '_' || r == '-' {
			continue
		}
		return ErrInvalidUser
	}
	return nil
}

// ValidateHostname ensures a prompt hostname is a single DNS label-ish token.
// Allowed characters: a-z, A-Z, 0-9, '.', '-'.
func ValidateHostname(host string) error {
	if host == "" || len(host) > 63 {
		return ErrInvalidHostname
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return ErrInvalidHostname
		}
	}
	return nil
}
