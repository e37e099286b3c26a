// internal/dosepath/selector.go
package dosepath

// Decision is a dose-finding model's verdict for a trial state.
// Dose 0 means "no dose": the model cannot recommend any level.
type Decision struct {
	Dose int
	Stop bool
}

// NoDose reports whether the decision carries no recommendation.
func (d Decision) NoDose() bool { return d.Dose == 0 }

// Selector is the capability a dose-finding model must provide. Recommend must
// be deterministic for a given history; refitting from scratch on every call
// is acceptable. The path engine consumes this contract and never looks inside
// the model.
type Selector interface {
	Recommend(history Outcomes) (Decision, error)
}

// SelectorFunc adapts a plain function to the Selector interface.
type SelectorFunc func(history Outcomes) (Decision, error)

func (f SelectorFunc) Recommend(history Outcomes) (Decision, error) {
	return f(history)
}
