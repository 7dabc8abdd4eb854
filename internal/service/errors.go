package service

import "strings"

// ValidationError reports the submission fields that were missing or empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "missing required fields"
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
