package prompt

import (
	"context"
	"fmt"
)

// Scripted replays prepared answers in order. A nil answer, or running out of answers, accepts the default.
type Scripted struct {
	answers []any
	// Asked records every message in the order it was asked.
	Asked []string
}

func NewScripted(answers ...any) *Scripted {
	return &Scripted{answers: answers}
}

func (s *Scripted) next(message string) any {
	s.Asked = append(s.Asked, message)
	if len(s.answers) == 0 {
		return nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer
}

func (s *Scripted) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	answer := cfg.Default
	switch v := s.next(cfg.Message).(type) {
	case nil:
	case string:
		answer = v
	default:
		return "", fmt.Errorf("scripted answer for %q is %T, want string", cfg.Message, v)
	}

	if cfg.Validator != nil {
		if err := cfg.Validator(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func (s *Scripted) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	switch v := s.next(cfg.Message).(type) {
	case nil:
		return cfg.Default, nil
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("scripted answer for %q is %T, want bool", cfg.Message, v)
	}
}

func (s *Scripted) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	switch v := s.next(cfg.Message).(type) {
	case nil:
		return cfg.DefaultIndex, nil
	case string:
		idx := indexOf(cfg.Options, v)
		if idx < 0 {
			return 0, fmt.Errorf("scripted answer %q is not an option of %q", v, cfg.Message)
		}
		return idx, nil
	default:
		return 0, fmt.Errorf("scripted answer for %q is %T, want string", cfg.Message, v)
	}
}
