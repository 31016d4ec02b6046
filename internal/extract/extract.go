// Package extract fills the 25-key FieldSet from an undifferentiated OCR
// transcription using a flat table of line rules and a whole-text post-pass.
package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/logger"
)

// Engine runs the rule table. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	rules []rule
	log   *zap.Logger
}

// NewEngine creates an Engine with the built-in rule table.
func NewEngine(log *zap.Logger) *Engine {
	return &Engine{rules: rules, log: logger.OrNop(log).Named("extract")}
}

// scan tracks which lines have been used during one Extract call.
type scan struct {
	lines    []string
	touched  []bool // matched by some rule on the same line
	consumed []bool // used as the value line of a label rule
	fields   domain.FieldSet
	hits     map[string]int
}

// Extract never fails. Unmatched fields stay empty, and identical input
// always yields an identical FieldSet.
func (e *Engine) Extract(rawText string) domain.FieldSet {
	raw := strings.Split(strings.ReplaceAll(rawText, "\r\n", "\n"), "\n")
	s := &scan{
		lines:    make([]string, len(raw)),
		touched:  make([]bool, len(raw)),
		consumed: make([]bool, len(raw)),
		hits:     map[string]int{},
	}
	for i, l := range raw {
		s.lines[i] = strings.TrimSpace(l)
	}

	for i, line := range s.lines {
		if line == "" || s.consumed[i] {
			continue
		}
		for idx := range e.rules {
			e.applyRule(s, &e.rules[idx], i)
		}
	}

	postPass(&s.fields, strings.Join(s.lines, "\n"))

	e.log.Debug("fields extracted",
		zap.Int("lines", len(s.lines)),
		zap.Int("filled", s.fields.FilledCount()),
		zap.Any("rule_hits", s.hits),
	)
	return s.fields
}

func (e *Engine) applyRule(s *scan, r *rule, i int) {
	line := s.lines[i]
	if r.unclaimedOnly && s.touched[i] {
		return
	}
	if r.exclude != nil && r.exclude.MatchString(line) {
		return
	}
	if r.gate != nil && !r.gate(s.lines, i) {
		return
	}

	if r.sameLine != nil {
		var matches [][]string
		if r.multi {
			matches = r.sameLine.FindAllStringSubmatch(line, -1)
		} else if m := r.sameLine.FindStringSubmatch(line); m != nil {
			matches = [][]string{m}
		}
		matched := false
		for _, m := range matches {
			if s.assign(r, groups(m)) {
				matched = true
			}
		}
		if matched {
			if !r.passive {
				s.touched[i] = true
			}
			return
		}
	}

	if r.label != nil && r.next != nil && r.label.MatchString(line) {
		j := s.nextValueLine(i)
		if j < 0 {
			return
		}
		m := r.next.FindStringSubmatch(s.lines[j])
		if m == nil {
			return
		}
		if s.assign(r, groups(m)) {
			s.touched[i] = true
			s.consumed[j] = true
		}
	}
}

// groups returns capture groups, or the whole match when there are none.
func groups(m []string) []string {
	if len(m) > 1 {
		return m[1:]
	}
	return m
}

// assign applies first-match-wins. It reports whether the values were usable;
// a match whose field is already set still counts, so it claims the line.
func (s *scan) assign(r *rule, values []string) bool {
	if len(values) < len(r.fields) {
		return false
	}
	usable := false
	for k, field := range r.fields {
		v := trimValue(values[k])
		if v == "" || (r.accept != nil && !r.accept(v)) {
			continue
		}
		if r.normalize != nil {
			v = r.normalize(v)
		}
		usable = true
		cur := s.fields.Ptr(field)
		switch {
		case *cur == "":
			*cur = v
			s.hits[r.name]++
		case r.secondary != "" && *cur != v:
			if sec := s.fields.Ptr(r.secondary); *sec == "" {
				*sec = v
				s.hits[r.name+"_secondary"]++
			}
		}
	}
	return usable
}

func (s *scan) nextValueLine(i int) int {
	for j := i + 1; j < len(s.lines); j++ {
		if s.lines[j] == "" {
			continue
		}
		if s.consumed[j] {
			return -1
		}
		return j
	}
	return -1
}
