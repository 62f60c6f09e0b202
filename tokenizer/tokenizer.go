// Package tokenizer estimates transcript sizes in model tokens so the agent
// loop can decide when to compress its history.
package tokenizer

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/logging"
)

// Per-message framing overhead used by chat formats: role and separators
// per message plus the priming of the assistant reply.
const (
	tokensPerMessage = 3
	tokensPerReply   = 3
)

// Counter measures text in model tokens. Implementations must be safe for
// concurrent use.
type Counter interface {
	Count(text string) int
	CountMessages(msgs []core.Message) int
}

// HeuristicCounter approximates tokens as one per four characters. It needs
// no vocabulary and never fails.
type HeuristicCounter struct{}

// Count implements Counter.
func (HeuristicCounter) Count(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// CountMessages implements Counter.
func (h HeuristicCounter) CountMessages(msgs []core.Message) int {
	return countMessages(h, msgs)
}

// TiktokenCounter counts with the BPE vocabulary of a specific model.
type TiktokenCounter struct {
	enc   *tiktoken.Tiktoken
	model string
}

// NewTiktokenCounter loads the encoding for model, e.g. "gpt-4".
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: encoding for model %q: %w", model, err)
	}

	return &TiktokenCounter{enc: enc, model: model}, nil
}

// Model returns the model whose vocabulary is used.
func (t *TiktokenCounter) Model() string { return t.model }

// Count implements Counter.
func (t *TiktokenCounter) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// CountMessages implements Counter.
func (t *TiktokenCounter) CountMessages(msgs []core.Message) int {
	return countMessages(t, msgs)
}

func countMessages(c Counter, msgs []core.Message) int {
	if len(msgs) == 0 {
		return 0
	}

	total := tokensPerReply
	for _, m := range msgs {
		total += tokensPerMessage + c.Count(string(m.Role)) + c.Count(m.Content)
	}

	return total
}

// New returns a tiktoken counter for model, or the heuristic counter when
// model is empty or its vocabulary cannot be loaded.
func New(model string, logger logging.Logger) Counter {
	if model == "" {
		return HeuristicCounter{}
	}

	tc, err := NewTiktokenCounter(model)
	if err != nil {
		if logger != nil {
			logger.Warn("tokenizer.fallback", "model", model, "error", err.Error())
		}

		return HeuristicCounter{}
	}

	return tc
}
