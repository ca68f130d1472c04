package render

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedTemplate = errors.New("malformed template")
	ErrDepthExceeded     = errors.New("conditional nesting depth exceeded")
)

type TemplateError struct {
	Err     error
	Flag    string
	Offset  int
	Message string
}

func (e *TemplateError) Error() string {
	switch {
	case e.Flag != "" && e.Offset >= 0:
		return fmt.Sprintf("%s: %s (flag %s at offset %d)", e.Err, e.Message, e.Flag, e.Offset)
	case e.Offset >= 0:
		return fmt.Sprintf("%s: %s (offset %d)", e.Err, e.Message, e.Offset)
	default:
		return fmt.Sprintf("%s: %s", e.Err, e.Message)
	}
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}
