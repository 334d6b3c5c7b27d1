package app

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnsupportedFile      = errors.New("only PDF files are supported")
	ErrSessionNotFound      = errors.New("session not found, please upload a PDF first")
	ErrSessionNotInDatabase = errors.New("session not found in database")
	ErrSummaryNotFound      = errors.New("could not find PDF summary in chat history")
)

// ProcessingError wraps a failure of the summarizer or the language model.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("error processing PDF: %v", e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
