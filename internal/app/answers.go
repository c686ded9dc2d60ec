package app

import (
	"context"
	"fmt"
	"strings"

	"fintech_sentiment/internal/domain"
)

// NotRecognized is the fixed fallback for questions no intent matches.
const NotRecognized = "Question not recognized. Try a different query."

// intent pairs case-insensitive keyword substrings with a handler. All
// keywords must appear in the question for the intent to fire. Keeping this
// as a list makes further intents an append, not another branch.
type intent struct {
	keywords []string
	handle   func(table []domain.Review) string
}

var intents = []intent{
	{
		keywords: []string{"negative", "google pay"},
		handle:   negativeCountFor("Google Pay"),
	},
}

func negativeCountFor(app string) func([]domain.Review) string {
	return func(table []domain.Review) string {
		n := 0
		for _, r := range table {
			if r.AppName == app && r.Label == domain.LabelNegative {
				n++
			}
		}
		return fmt.Sprintf("%s has %d negative reviews.", app, n)
	}
}

// Answer matches the question against the registered intents over the full
// (unfiltered) table. This is a hard-coded matcher, not a language model:
// substring checks only, no tokenization.
func Answer(table []domain.Review, question string) string {
	q := strings.ToLower(question)
	for _, it := range intents {
		matched := true
		for _, kw := range it.keywords {
			if !strings.Contains(q, kw) {
				matched = false
				break
			}
		}
		if matched {
			return it.handle(table)
		}
	}
	return NotRecognized
}

// AnswerService loads the table once per process and answers free-text
// questions against it.
type AnswerService struct {
	source domain.ReviewSource
}

func NewAnswerService(s domain.ReviewSource) *AnswerService {
	return &AnswerService{source: s}
}

func (s *AnswerService) Answer(ctx context.Context, question string) (string, error) {
	table, err := s.source.Load(ctx)
	if err != nil {
		return "", err
	}
	return Answer(table, question), nil
}
