// internal/dosepath/errors.go
package dosepath

import "fmt"

// ParseError reports a malformed outcome-notation token.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bad outcome token %q: %s", e.Token, e.Reason)
}

// ConfigError reports invalid enumeration or crystallisation parameters.
// It is raised before any tree construction begins.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// ModelError wraps a dose-selector failure with the history that triggered it.
// Selector failures are never treated as stop signals; doing so would corrupt
// the probability accounting.
type ModelError struct {
	History string
	Err     error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("dose selector failed at history %q: %v", e.History, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }
