package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind tags the origin of an AccountError.
type Kind string

const (
	KindIO              Kind = "io"
	KindTransport       Kind = "transport"
	KindStatus          Kind = "status"
	KindMissingElement  Kind = "missing_element"
	KindMissingAttr     Kind = "missing_attr"
	KindMissingPart     Kind = "missing_part"
	KindDecode          Kind = "decode"
	KindPatternMismatch Kind = "pattern_mismatch"
	KindMissingMessage  Kind = "missing_message"
)

func (k Kind) String() string {
	return string(k)
}

// Error lets a Kind act as an errors.Is target.
func (k Kind) Error() string {
	return string(k)
}

// AccountError is the single error type produced by a failing reset step.
// Only the fields relevant to Kind are set.
type AccountError struct {
	Kind     Kind
	URL      string
	Status   int
	Selector string
	Attr     string
	MimeType string
	Query    string
	Pattern  string
	Err      error
}

func (e *AccountError) Error() string {
	switch e.Kind {
	case KindIO:
		return fmt.Sprintf("reading response from %s: %v", e.URL, e.Err)
	case KindTransport:
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	case KindStatus:
		return fmt.Sprintf("unexpected status %d at %s", e.Status, e.URL)
	case KindMissingElement:
		return fmt.Sprintf("missing element %s at %s", e.Selector, e.URL)
	case KindMissingAttr:
		return fmt.Sprintf("missing attribute %s on %s at %s", e.Attr, e.Selector, e.URL)
	case KindMissingPart:
		return fmt.Sprintf("message has no %s part", e.MimeType)
	case KindDecode:
		return fmt.Sprintf("decoding %s part: %v", e.MimeType, e.Err)
	case KindPatternMismatch:
		if e.Err != nil {
			return fmt.Sprintf("pattern %s: %v", e.Pattern, e.Err)
		}
		return fmt.Sprintf("no match for pattern %s", e.Pattern)
	case KindMissingMessage:
		return fmt.Sprintf("no message matching %s", e.Query)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *AccountError) Unwrap() error {
	return e.Err
}

func (e *AccountError) Cause() error {
	return e.Err
}

func (e *AccountError) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}

func IO(url string, err error) error {
	return &AccountError{Kind: KindIO, URL: url, Err: err}
}

func Transport(url string, err error) error {
	return &AccountError{Kind: KindTransport, URL: url, Err: err}
}

func Status(url string, status int) error {
	return &AccountError{Kind: KindStatus, URL: url, Status: status}
}

func MissingElement(url, selector string) error {
	return &AccountError{Kind: KindMissingElement, URL: url, Selector: selector}
}

func MissingAttr(url, selector, attr string) error {
	return &AccountError{Kind: KindMissingAttr, URL: url, Selector: selector, Attr: attr}
}

func MissingPart(mimeType string) error {
	return &AccountError{Kind: KindMissingPart, MimeType: mimeType}
}

func Decode(mimeType string, err error) error {
	return &AccountError{Kind: KindDecode, MimeType: mimeType, Err: err}
}

func PatternMismatch(pattern string, err error) error {
	return &AccountError{Kind: KindPatternMismatch, Pattern: pattern, Err: err}
}

func MissingMessage(query string) error {
	return &AccountError{Kind: KindMissingMessage, Query: query}
}

// KindOf returns the kind of the first AccountError in err's chain, or ""
// when there is none.
func KindOf(err error) Kind {
	var accountErr *AccountError
	if errors.As(err, &accountErr) {
		return accountErr.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
