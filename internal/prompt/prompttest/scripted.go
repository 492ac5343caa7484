// Package prompttest provides a deterministic prompt.Prompter for tests.
package prompttest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nhle/notionmail/internal/prompt"
)

// ErrExhausted is returned when a prompt is issued after all scripted
// answers have been consumed.
var ErrExhausted = errors.New("prompttest: script exhausted")

// Chooser picks an option out of the labels presented by a Select call.
type Chooser func(labels []string) (int, error)

// Index always picks the option at i.
func Index(i int) Chooser {
	return func(labels []string) (int, error) {
		if i < 0 || i >= len(labels) {
			return 0, fmt.Errorf("prompttest: index %d out of range (%d options)", i, len(labels))
		}
		return i, nil
	}
}

// Last picks the final option.
func Last() Chooser {
	return func(labels []string) (int, error) {
		return len(labels) - 1, nil
	}
}

// Containing picks the first option whose label contains substr.
func Containing(substr string) Chooser {
	return func(labels []string) (int, error) {
		for i, l := range labels {
			if strings.Contains(l, substr) {
				return i, nil
			}
		}
		return 0, fmt.Errorf("prompttest: no option contains %q in %q", substr, labels)
	}
}

// TextCall records one Text prompt.
type TextCall struct {
	Title    string
	Answer   string
	Rejected []string
}

// SelectCall records one Select prompt and what was offered.
type SelectCall struct {
	Title  string
	Labels []string
	Chosen int
}

// Scripted replays queued answers in order. Text answers that fail the
// supplied validator are recorded as rejected and the next answer is tried,
// mirroring an interactive re-prompt.
type Scripted struct {
	mu      sync.Mutex
	texts   []string
	choices []Chooser

	TextCalls   []TextCall
	SelectCalls []SelectCall
}

// New creates an empty script.
func New() *Scripted {
	return &Scripted{}
}

// Type queues text answers.
func (s *Scripted) Type(answers ...string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, answers...)
	return s
}

// Choose queues selection answers.
func (s *Scripted) Choose(choosers ...Chooser) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.choices = append(s.choices, choosers...)
	return s
}

// Text implements prompt.Prompter.
func (s *Scripted) Text(
	ctx context.Context,
	title string,
	validate prompt.Validator,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := TextCall{Title: title}
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if len(s.texts) == 0 {
			s.TextCalls = append(s.TextCalls, call)
			return "", ErrExhausted
		}
		answer := s.texts[0]
		s.texts = s.texts[1:]

		if validate != nil && validate(answer) != nil {
			call.Rejected = append(call.Rejected, answer)
			continue
		}
		call.Answer = answer
		s.TextCalls = append(s.TextCalls, call)
		return answer, nil
	}
}

// Select implements prompt.Prompter.
func (s *Scripted) Select(
	ctx context.Context,
	title string,
	labels []string,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	call := SelectCall{Title: title, Labels: append([]string(nil), labels...), Chosen: -1}
	if len(s.choices) == 0 {
		s.SelectCalls = append(s.SelectCalls, call)
		return 0, ErrExhausted
	}
	choose := s.choices[0]
	s.choices = s.choices[1:]

	idx, err := choose(labels)
	if err != nil {
		s.SelectCalls = append(s.SelectCalls, call)
		return 0, err
	}
	call.Chosen = idx
	s.SelectCalls = append(s.SelectCalls, call)
	return idx, nil
}

// Remaining reports how many text and select answers are still queued.
func (s *Scripted) Remaining() (texts, choices int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.texts), len(s.choices)
}
