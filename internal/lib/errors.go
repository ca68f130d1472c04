package lib

import "errors"

var (
	BadUserInputError = errors.New("bad user input")
	CancelledError    = errors.New("cancelled by user")
)
