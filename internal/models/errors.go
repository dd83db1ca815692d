package models

import "strings"

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors collects every field problem found in one submission
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, v := range e {
		messages = append(messages, v.Message)
	}
	return strings.Join(messages, "; ")
}
