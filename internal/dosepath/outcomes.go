// internal/dosepath/outcomes.go
package dosepath

import (
	"strconv"
	"strings"
)

// OutcomeToken is a single patient's binary toxicity outcome.
type OutcomeToken uint8

const (
	NoToxicity OutcomeToken = iota
	Toxicity
)

func (o OutcomeToken) String() string {
	if o == Toxicity {
		return "T"
	}
	return "N"
}

// Cohort is an ordered run of patient outcomes, all treated at one dose level.
type Cohort struct {
	Dose     int
	Outcomes []OutcomeToken
}

// NumTox counts toxicities in the cohort.
func (c Cohort) NumTox() int {
	n := 0
	for _, o := range c.Outcomes {
		if o == Toxicity {
			n++
		}
	}
	return n
}

func (c Cohort) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(c.Dose))
	for _, o := range c.Outcomes {
		b.WriteString(o.String())
	}
	return b.String()
}

// Outcomes is a parsed trial history: an ordered sequence of cohorts.
type Outcomes struct {
	Cohorts []Cohort
}

// Patient is one row of the flat per-patient table.
type Patient struct {
	Cohort  int `json:"cohort"`
	Patient int `json:"patient"`
	Dose    int `json:"dose"`
	Tox     int `json:"tox"`
}

// NumPatients is the total token count across all cohorts.
func (o Outcomes) NumPatients() int {
	n := 0
	for _, c := range o.Cohorts {
		n += len(c.Outcomes)
	}
	return n
}

// Patients flattens the cohorts into per-patient rows. Cohort and patient ids
// are 1-based and sequential across the whole history.
func (o Outcomes) Patients() []Patient {
	out := make([]Patient, 0, o.NumPatients())
	pid := 0
	for ci, c := range o.Cohorts {
		for _, tok := range c.Outcomes {
			pid++
			tox := 0
			if tok == Toxicity {
				tox = 1
			}
			out = append(out, Patient{Cohort: ci + 1, Patient: pid, Dose: c.Dose, Tox: tox})
		}
	}
	return out
}

// String serializes back to outcome notation, e.g. "1NNN 2NTN". Parsing the
// result yields the same history.
func (o Outcomes) String() string {
	parts := make([]string, 0, len(o.Cohorts))
	for _, c := range o.Cohorts {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}

// LastDose is the dose of the most recent cohort, or 0 for an empty history.
func (o Outcomes) LastDose() int {
	if len(o.Cohorts) == 0 {
		return 0
	}
	return o.Cohorts[len(o.Cohorts)-1].Dose
}

// Append returns a new history with one more cohort. The receiver is not
// mutated; cohort slices are copied so histories never alias.
func (o Outcomes) Append(c Cohort) Outcomes {
	cohorts := make([]Cohort, 0, len(o.Cohorts)+1)
	cohorts = append(cohorts, o.Cohorts...)
	toks := make([]OutcomeToken, len(c.Outcomes))
	copy(toks, c.Outcomes)
	cohorts = append(cohorts, Cohort{Dose: c.Dose, Outcomes: toks})
	return Outcomes{Cohorts: cohorts}
}

// Parse converts outcome notation into a structured history. The grammar is
// whitespace-separated cohort tokens, each a decimal dose level followed by a
// run of outcome letters from {T, N}. The empty string is valid and means zero
// prior patients. Only syntax is checked; dose ordering and plausibility are
// the caller's concern.
func Parse(notation string) (Outcomes, error) {
	fields := strings.Fields(notation)
	if len(fields) == 0 {
		return Outcomes{}, nil
	}

	cohorts := make([]Cohort, 0, len(fields))
	for _, tok := range fields {
		i := 0
		for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
			i++
		}
		if i == 0 {
			return Outcomes{}, &ParseError{Token: tok, Reason: "missing dose level"}
		}
		dose, err := strconv.Atoi(tok[:i])
		if err != nil {
			return Outcomes{}, &ParseError{Token: tok, Reason: "invalid dose level"}
		}
		if dose < 1 {
			return Outcomes{}, &ParseError{Token: tok, Reason: "dose level must be positive"}
		}
		letters := tok[i:]
		if letters == "" {
			return Outcomes{}, &ParseError{Token: tok, Reason: "missing outcome letters"}
		}

		outs := make([]OutcomeToken, 0, len(letters))
		for _, r := range letters {
			switch r {
			case 'T':
				outs = append(outs, Toxicity)
			case 'N':
				outs = append(outs, NoToxicity)
			default:
				return Outcomes{}, &ParseError{Token: tok, Reason: "unrecognized outcome letter " + strconv.QuoteRune(r)}
			}
		}
		cohorts = append(cohorts, Cohort{Dose: dose, Outcomes: outs})
	}

	return Outcomes{Cohorts: cohorts}, nil
}
