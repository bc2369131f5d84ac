package statement

import (
	"errors"
	"strings"
)

var (
	ErrHeaderNotFound = errors.New("statement: header row not found")
	ErrMissingColumns = errors.New("statement: missing required columns")
	ErrUnreadable     = errors.New("statement: unreadable workbook")
)

// ParseError is a structural failure of a whole statement. Message is meant for
// the end user; Err is one of the package sentinels.
type ParseError struct {
	Err     error
	Message string
	Missing []string
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func headerNotFound(p Profile) error {
	msg := strings.TrimSpace(p.HeaderHint)
	if msg == "" {
		msg = "header row with column " + p.Label(FieldDate) + " not found"
	}
	return &ParseError{Err: ErrHeaderNotFound, Message: msg}
}

func missingColumns(labels []string) error {
	return &ParseError{
		Err:     ErrMissingColumns,
		Message: "Colonne mancanti nel file: " + strings.Join(labels, ", "),
		Missing: labels,
	}
}

func unreadable(err error) error {
	return &ParseError{
		Err:     ErrUnreadable,
		Message: "File Excel non leggibile: " + err.Error(),
	}
}
