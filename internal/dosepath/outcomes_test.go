// internal/dosepath/outcomes_test.go
package dosepath

import (
	"errors"
	"testing"
)

func TestParse_ThreeCohorts(t *testing.T) {
	out, err := Parse("1NNN 2NTN 3TTT")
	if err != nil {
		t.Fatal(err)
	}

	if got := out.NumPatients(); got != 9 {
		t.Fatalf("expected 9 patients, got %d", got)
	}

	patients := out.Patients()
	wantDoses := []int{1, 1, 1, 2, 2, 2, 3, 3, 3}
	wantTox := []int{0, 0, 0, 0, 1, 0, 1, 1, 1}
	sumTox := 0
	for i, p := range patients {
		if p.Patient != i+1 {
			t.Fatalf("patient %d has id %d", i, p.Patient)
		}
		if p.Dose != wantDoses[i] {
			t.Fatalf("patient %d: expected dose %d, got %d", i+1, wantDoses[i], p.Dose)
		}
		if p.Tox != wantTox[i] {
			t.Fatalf("patient %d: expected tox %d, got %d", i+1, wantTox[i], p.Tox)
		}
		sumTox += p.Tox
	}
	if sumTox != 4 {
		t.Fatalf("expected 4 toxicities, got %d", sumTox)
	}

	if patients[0].Cohort != 1 || patients[3].Cohort != 2 || patients[8].Cohort != 3 {
		t.Fatalf("unexpected cohort ids: %#v", patients)
	}
}

func TestParse_EmptyString(t *testing.T) {
	for _, notation := range []string{"", "   ", "\t\n"} {
		out, err := Parse(notation)
		if err != nil {
			t.Fatalf("notation %q: %v", notation, err)
		}
		if out.NumPatients() != 0 {
			t.Fatalf("notation %q: expected 0 patients, got %d", notation, out.NumPatients())
		}
		if len(out.Patients()) != 0 {
			t.Fatalf("notation %q: expected empty patient table", notation)
		}
	}
}

func TestParse_MultipleWhitespace(t *testing.T) {
	out, err := Parse("  1NN   2TT ")
	if err != nil {
		t.Fatal(err)
	}
	if out.NumPatients() != 4 {
		t.Fatalf("expected 4 patients, got %d", out.NumPatients())
	}
	if out.Cohorts[1].Dose != 2 || out.Cohorts[1].NumTox() != 2 {
		t.Fatalf("unexpected second cohort: %#v", out.Cohorts[1])
	}
}

func TestParse_MultiDigitDose(t *testing.T) {
	out, err := Parse("12NT")
	if err != nil {
		t.Fatal(err)
	}
	if out.Cohorts[0].Dose != 12 {
		t.Fatalf("expected dose 12, got %d", out.Cohorts[0].Dose)
	}
}

func TestParse_MalformedTokens(t *testing.T) {
	cases := []string{
		"NNN",    // no dose prefix
		"1",      // no outcome letters
		"1NXN",   // bad letter
		"1nnn",   // case-sensitive
		"0NN",    // dose must be positive
		"1NN 2Q", // second token bad
	}

	for _, notation := range cases {
		_, err := Parse(notation)
		if err == nil {
			t.Fatalf("notation %q: expected error", notation)
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("notation %q: expected ParseError, got %T", notation, err)
		}
		if pe.Token == "" {
			t.Fatalf("notation %q: ParseError does not name the token", notation)
		}
	}
}

func TestOutcomes_RoundTrip(t *testing.T) {
	for _, notation := range []string{"", "1NNN", "1NNN 2NTN 3TTT", "2T 2T 1N"} {
		out, err := Parse(notation)
		if err != nil {
			t.Fatal(err)
		}
		again, err := Parse(out.String())
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", out.String(), err)
		}
		if again.String() != out.String() {
			t.Fatalf("round trip changed %q to %q", out.String(), again.String())
		}
	}
}

func TestOutcomes_AppendDoesNotAlias(t *testing.T) {
	base, err := Parse("1NN")
	if err != nil {
		t.Fatal(err)
	}

	cohort := Cohort{Dose: 2, Outcomes: []OutcomeToken{NoToxicity, Toxicity}}
	grown := base.Append(cohort)
	cohort.Outcomes[0] = Toxicity

	if grown.String() != "1NN 2NT" {
		t.Fatalf("appended history aliases caller slice: %q", grown.String())
	}
	if base.NumPatients() != 2 {
		t.Fatalf("append mutated the receiver: %#v", base)
	}
}

func TestOutcomes_LastDose(t *testing.T) {
	if d := (Outcomes{}).LastDose(); d != 0 {
		t.Fatalf("expected 0 for empty history, got %d", d)
	}
	out, err := Parse("1NNN 3TNN")
	if err != nil {
		t.Fatal(err)
	}
	if d := out.LastDose(); d != 3 {
		t.Fatalf("expected 3, got %d", d)
	}
}
