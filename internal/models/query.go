package models

import (
	"fmt"
	"strings"
)

// Query identifies a confirmation email by sender and subject.
type Query struct {
	From    string
	Subject string
}

// String renders the query in Gmail search syntax.
func (q Query) String() string {
	var terms []string
	if q.From != "" {
		terms = append(terms, fmt.Sprintf("from:(%s)", q.From))
	}
	if q.Subject != "" {
		terms = append(terms, fmt.Sprintf("subject:(%s)", q.Subject))
	}
	return strings.Join(terms, " ")
}
