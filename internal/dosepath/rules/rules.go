// internal/dosepath/rules/rules.go
//
// A rule-table dose selector: a design is an ordered list of
// "condition => action" lines, conditions being boolean expressions over the
// current trial state. The first matching rule decides. Simple escalation
// designs (3+3 and variants) are expressible here; statistical models (CRM,
// BOIN, ...) live behind the same Selector interface but outside this package.
package rules

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/oncostat/dosepath/internal/dosepath"
)

// Action is what a matched rule does, relative to the current dose.
type Action string

const (
	// Escalate moves one dose up, or stays if already at the top dose.
	Escalate Action = "escalate"
	// Stay keeps the current dose.
	Stay Action = "stay"
	// Deescalate moves one dose down; below the lowest dose the trial
	// stops with no recommendation.
	Deescalate Action = "deescalate"
	// Stop ends the trial with no recommendation.
	Stop Action = "stop"
	// Select ends the trial recommending the current dose.
	Select Action = "select"
)

// RuleError reports an unparseable design rule.
type RuleError struct {
	Line   int
	Rule   string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("bad rule on line %d (%q): %s", e.Line, e.Rule, e.Reason)
}

type rule struct {
	cond    string
	program *vm.Program
	action  Action
}

// Selector evaluates a compiled rule table against trial histories. It
// implements dosepath.Selector and is deterministic for a given history.
type Selector struct {
	rules     []rule
	numDoses  int
	startDose int
}

type Option func(*Selector)

// WithStartDose sets the dose recommended for an empty history. Default 1.
func WithStartDose(d int) Option {
	return func(s *Selector) {
		s.startDose = d
	}
}

// New compiles a rule table. Lines are evaluated top to bottom; blank lines
// and '#' comments are skipped. Conditions may reference: dose, n, tox, rate
// (at the current dose), n_total, tox_total, cohorts, num_doses, highest,
// lowest.
func New(src string, numDoses int, opts ...Option) (*Selector, error) {
	if numDoses < 1 {
		return nil, fmt.Errorf("num doses must be positive")
	}

	s := &Selector{numDoses: numDoses, startDose: 1}
	for _, opt := range opts {
		opt(s)
	}
	if s.startDose < 1 || s.startDose > numDoses {
		return nil, fmt.Errorf("start dose %d outside 1..%d", s.startDose, numDoses)
	}

	for i, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=>", 2)
		if len(parts) != 2 {
			return nil, &RuleError{Line: i + 1, Rule: line, Reason: "expected condition => action"}
		}

		cond := strings.TrimSpace(parts[0])
		if err := Validate(cond); err != nil {
			return nil, &RuleError{Line: i + 1, Rule: line, Reason: err.Error()}
		}

		program, err := expr.Compile(cond, expr.AsBool())
		if err != nil {
			return nil, &RuleError{Line: i + 1, Rule: line, Reason: fmt.Sprintf("condition does not compile: %v", err)}
		}

		action := Action(strings.TrimSpace(parts[1]))
		switch action {
		case Escalate, Stay, Deescalate, Stop, Select:
		default:
			return nil, &RuleError{Line: i + 1, Rule: line, Reason: fmt.Sprintf("unknown action %q", action)}
		}

		s.rules = append(s.rules, rule{cond: cond, program: program, action: action})
	}

	if len(s.rules) == 0 {
		return nil, fmt.Errorf("design has no rules")
	}

	return s, nil
}

// Recommend evaluates the rule table against the history. An empty history
// recommends the start dose. The first rule whose condition holds wins; if
// none matches the selector fails rather than guessing.
func (s *Selector) Recommend(history dosepath.Outcomes) (dosepath.Decision, error) {
	if history.NumPatients() == 0 {
		return dosepath.Decision{Dose: s.startDose}, nil
	}

	env := s.env(history)
	for _, r := range s.rules {
		out, err := expr.Run(r.program, env)
		if err != nil {
			return dosepath.Decision{}, fmt.Errorf("rule %q: %w", r.cond, err)
		}
		matched, ok := out.(bool)
		if !ok {
			return dosepath.Decision{}, fmt.Errorf("rule %q: condition must evaluate to bool (got %T)", r.cond, out)
		}
		if matched {
			return s.apply(r.action, history.LastDose()), nil
		}
	}

	return dosepath.Decision{}, fmt.Errorf("no rule matched state %q", history.String())
}

func (s *Selector) apply(action Action, cur int) dosepath.Decision {
	switch action {
	case Escalate:
		if cur < s.numDoses {
			return dosepath.Decision{Dose: cur + 1}
		}
		return dosepath.Decision{Dose: cur}
	case Deescalate:
		if cur > 1 {
			return dosepath.Decision{Dose: cur - 1}
		}
		return dosepath.Decision{Stop: true}
	case Stop:
		return dosepath.Decision{Stop: true}
	case Select:
		return dosepath.Decision{Dose: cur, Stop: true}
	default:
		return dosepath.Decision{Dose: cur}
	}
}

func (s *Selector) env(history dosepath.Outcomes) map[string]any {
	cur := history.LastDose()

	nCur, toxCur, nTotal, toxTotal := 0, 0, 0, 0
	for _, c := range history.Cohorts {
		n := len(c.Outcomes)
		tox := c.NumTox()
		nTotal += n
		toxTotal += tox
		if c.Dose == cur {
			nCur += n
			toxCur += tox
		}
	}

	rate := 0.0
	if nCur > 0 {
		rate = float64(toxCur) / float64(nCur)
	}

	return map[string]any{
		"dose":      cur,
		"n":         nCur,
		"tox":       toxCur,
		"rate":      rate,
		"n_total":   nTotal,
		"tox_total": toxTotal,
		"cohorts":   len(history.Cohorts),
		"num_doses": s.numDoses,
		"highest":   cur == s.numDoses,
		"lowest":    cur == 1,
	}
}
