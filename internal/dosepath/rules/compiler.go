package rules

import "github.com/oncostat/dosepath/internal/dosepath"

// Compiler turns rule-table design source into a Selector. It satisfies the
// app layer's DesignCompiler contract.
type Compiler struct{}

func NewCompiler() *Compiler { return &Compiler{} }

func (c *Compiler) Compile(src string, numDoses, startDose int) (dosepath.Selector, error) {
	if startDose < 1 {
		startDose = 1
	}
	return New(src, numDoses, WithStartDose(startDose))
}
