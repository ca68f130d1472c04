// Package prompt asks the interactive questions of the setup command.
package prompt

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
)

type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

type ConfirmConfig struct {
	Message string
	Default bool
}

type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
}

// Prompter abstracts the terminal so setup flows can run scripted in tests.
type Prompter interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
}

// New returns the survey prompter on a terminal and a plain line prompter otherwise.
func New(in io.Reader, out io.Writer) Prompter {
	if in == os.Stdin && lib.IsTerminal(os.Stdin) && lib.IsTerminal(os.Stdout) {
		return &surveyPrompter{}
	}
	return NewLinePrompter(in, out)
}

func NewLinePrompter(in io.Reader, out io.Writer) Prompter {
	return &linePrompter{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}
