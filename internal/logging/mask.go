package logging

import (
	"strings"
)

// MaskChar is the character used for masking.
const MaskChar = "*"

// contactFields are client contact details kept out of logs.
var contactFields = map[string]bool{
	"email":   true,
	"phone":   true,
	"address": true,
}

// IsContactField reports whether a log key carries client contact details.
func IsContactField(key string) bool {
	lower := strings.ToLower(key)
	for field := range contactFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

// MaskEmail keeps the first character of the local part and the domain:
// jean.dupont@example.fr becomes j***@example.fr.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return MaskValue(email)
	}
	return local[:1] + strings.Repeat(MaskChar, 3) + "@" + domain
}

// MaskPhone keeps the last two digits.
func MaskPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) <= 2 {
		return MaskValue(phone)
	}
	return strings.Repeat(MaskChar, 6) + digits[len(digits)-2:]
}

// MaskValue masks a value completely.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	return strings.Repeat(MaskChar, min(len(value), 8))
}

// MaskArgs masks contact details in slog key-value pairs.
func MaskArgs(args []any) []any {
	if len(args) < 2 {
		return args
	}

	var result []any
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok || !IsContactField(key) {
			continue
		}
		if result == nil {
			result = make([]any, len(args))
			copy(result, args)
		}
		value, _ := args[i+1].(string)
		switch {
		case strings.Contains(key, "email"):
			result[i+1] = MaskEmail(value)
		case strings.Contains(key, "phone"):
			result[i+1] = MaskPhone(value)
		default:
			result[i+1] = MaskValue(value)
		}
	}
	if result == nil {
		return args
	}
	return result
}
