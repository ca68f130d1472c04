package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
)

const maxLineAttempts = 3

// linePrompter reads answers line by line, used when stdin is not a terminal.
type linePrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func (p *linePrompter) Input(ctx context.Context, cfg InputConfig) (string, error) {
	for attempt := 0; attempt < maxLineAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		answer, err := lib.RequestLineInput(p.reader, p.out, cfg.Message, cfg.Default)
		if err != nil {
			return "", err
		}
		if cfg.Validator == nil {
			return answer, nil
		}
		if err := cfg.Validator(answer); err != nil {
			fmt.Fprintf(p.out, "Invalid value: %s\n", err)
			continue
		}
		return answer, nil
	}

	return "", fmt.Errorf("%w - no valid answer for %q", lib.BadUserInputError, cfg.Message)
}

func (p *linePrompter) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	def := "n"
	if cfg.Default {
		def = "y"
	}

	for attempt := 0; attempt < maxLineAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		answer, err := lib.RequestLineInput(p.reader, p.out, cfg.Message+" (y/n)", def)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer yes or no.")
	}

	return false, fmt.Errorf("%w - no valid answer for %q", lib.BadUserInputError, cfg.Message)
}

func (p *linePrompter) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if len(cfg.Options) == 0 {
		return 0, fmt.Errorf("%w - no options for %q", lib.BadUserInputError, cfg.Message)
	}

	def := ""
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		def = cfg.Options[cfg.DefaultIndex]
	}

	for attempt := 0; attempt < maxLineAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		for i, option := range cfg.Options {
			fmt.Fprintf(p.out, "  [%d] %s\n", i+1, option)
		}
		answer, err := lib.RequestLineInput(p.reader, p.out, cfg.Message, def)
		if err != nil {
			return 0, err
		}

		if idx := indexOf(cfg.Options, answer); idx >= 0 {
			return idx, nil
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(cfg.Options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Unknown option %q.\n", answer)
	}

	return 0, fmt.Errorf("%w - no valid answer for %q", lib.BadUserInputError, cfg.Message)
}
