// Package recovery pulls a single JSON object out of noisy engine output.
//
// Engines print progress messages, warnings and banners to stdout around the
// payload. Each Strategy tries one way of locating the payload; a Chain runs
// strategies in order and the first success wins.
package recovery

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/logger"
)

// Strategy names, reported on the result as recovery_strategy.
const (
	StrategyBraceSpan    = "brace_span"
	StrategyTrailingLine = "trailing_line"
)

// Strategy attempts to recover one JSON object from text.
type Strategy interface {
	Name() string
	Recover(text string) (map[string]any, error)
}

// Recovered is a successfully recovered payload and the strategy that found it.
type Recovered struct {
	Payload  map[string]any
	Strategy string
}

// BraceSpan takes everything from the first '{' to the last '}' of the
// trimmed text and parses it as one object.
type BraceSpan struct{}

func (BraceSpan) Name() string { return StrategyBraceSpan }

func (BraceSpan) Recover(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first < 0 || last < first {
		return nil, fmt.Errorf("no brace-delimited span")
	}
	return decodeObject(text[first : last+1])
}

// TrailingLine scans lines from the end and parses the first line whose
// trimmed content starts with '{'. Only that line is tried.
type TrailingLine struct{}

func (TrailingLine) Name() string { return StrategyTrailingLine }

func (TrailingLine) Recover(text string) (map[string]any, error) {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "{") {
			return decodeObject(line)
		}
	}
	return nil, fmt.Errorf("no line starting with '{'")
}

func decodeObject(s string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, fmt.Errorf("decoding JSON object: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("JSON value is not an object")
	}
	return obj, nil
}

// Chain tries strategies in order.
type Chain struct {
	strategies []Strategy
	log        *zap.Logger
}

// NewChain creates a Chain from an ordered list of strategies.
func NewChain(log *zap.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, log: logger.OrNop(log).Named("recovery")}
}

// DefaultChain is brace-span first, trailing-line second.
func DefaultChain(log *zap.Logger) *Chain {
	return NewChain(log, BraceSpan{}, TrailingLine{})
}

// Recover returns the first strategy's success, or *domain.JSONRecoveryError
// when none succeeds. It never returns a partial object.
func (c *Chain) Recover(stdout string) (*Recovered, error) {
	for _, s := range c.strategies {
		obj, err := s.Recover(stdout)
		if err == nil {
			c.log.Debug("payload recovered", zap.String("strategy", s.Name()), zap.Int("keys", len(obj)))
			return &Recovered{Payload: obj, Strategy: s.Name()}, nil
		}
		c.log.Debug("strategy failed", zap.String("strategy", s.Name()), zap.Error(err))
	}
	return nil, &domain.JSONRecoveryError{RawOutput: stdout}
}
