package module

import (
	"net"
	"net/mail"
	"net/url"
	"regexp"
)

// hostnamePattern is the RFC 1123 label grammar.
var hostnamePattern = regexp.MustCompile(
	`^(([a-zA-Z0-9]|[a-zA-Z0-9][a-zA-Z0-9\-]*[a-zA-Z0-9])\.)*([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9\-]*[A-Za-z0-9])$`)

// Positive accepts numbers greater than zero.
func Positive(value any) bool {
	n, ok := toFloat(value)
	return ok && n > 0
}

// NonNegative accepts numbers greater than or equal to zero.
func NonNegative(value any) bool {
	n, ok := toFloat(value)
	return ok && n >= 0
}

// PortNumber accepts integers in the valid TCP/UDP port range.
func PortNumber(value any) bool {
	n, ok := toFloat(value)
	return ok && n == float64(int(n)) && n >= 1 && n <= 65535
}

// InRange builds a validator accepting numbers within [min, max].
func InRange(min, max float64) ValidatorFunc {
	return func(value any) bool {
		n, ok := toFloat(value)
		return ok && n >= min && n <= max
	}
}

// OneOf builds a validator accepting only the listed values.
func OneOf(valid ...any) ValidatorFunc {
	return func(value any) bool {
		for _, candidate := range valid {
			if candidate == value {
				return true
			}
		}
		return false
	}
}

// Matches builds a validator accepting strings matching the pattern. An
// invalid pattern yields a validator that rejects everything.
func Matches(pattern string) ValidatorFunc {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return func(any) bool { return false }
	}
	return func(value any) bool {
		s, ok := value.(string)
		return ok && re.MatchString(s)
	}
}

// IPAddress accepts IPv4 and IPv6 address strings.
func IPAddress(value any) bool {
	s, ok := value.(string)
	return ok && net.ParseIP(s) != nil
}

// Hostname accepts RFC 1123 hostnames.
func Hostname(value any) bool {
	s, ok := value.(string)
	return ok && len(s) <= 253 && hostnamePattern.MatchString(s)
}

// Email accepts addresses parseable per RFC 5322.
func Email(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// URL accepts absolute http and https URLs.
func URL(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Length builds a validator on string length; max < 0 means unbounded.
func Length(min, max int) ValidatorFunc {
	return func(value any) bool {
		s, ok := value.(string)
		if !ok {
			return false
		}
		if max >= 0 && len(s) > max {
			return false
		}
		return len(s) >= min
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
