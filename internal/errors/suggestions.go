package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrInterventionNotFound: "Use 'artisan intervention list' to see scheduled interventions.",
	ErrInvoiceNotFound:      "Use 'artisan invoice list' to see invoices.",
	ErrClientNotFound:       "Use 'artisan client list' to see clients, or 'artisan client add' to create one.",
	ErrNotificationNotFound: "Use 'artisan notifications list --all' to see notifications.",
	ErrInvalidDuration:      "Durations are whole minutes between 1 and 120.",
	ErrInvalidStatus:        "Valid statuses are todo, completed and cancelled.",
	ErrInvalidTimestamp:     "Try formats like 'tomorrow 9am', 'friday 14:00' or '2026-01-15 10:30'.",
	ErrTitleRequired:        "Give the intervention a short title, e.g. 'Leak repair'.",
	ErrAmbiguousID:          "Type more characters of the id.",
}

// GetSuggestion returns a suggestion for an error, if available.
// A UserError's own suggestion wins over the generic table.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	return ""
}

// FormatError renders an error and its suggestion for terminal output.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if suggestion := GetSuggestion(err); suggestion != "" {
		msg += "\n  Hint: " + suggestion
	}
	return msg
}
