package pathdto

import "github.com/oncostat/dosepath/internal/app"

type PathsRequest struct {
	Design           string    `json:"design"`
	NumDoses         int       `json:"num_doses"`
	StartDose        int       `json:"start_dose,omitempty"`
	CohortSizes      []int     `json:"cohort_sizes"`
	PreviousOutcomes string    `json:"previous_outcomes,omitempty"`
	NextDose         int       `json:"next_dose,omitempty"`
	TrueProbTox      []float64 `json:"true_prob_tox,omitempty"`
	IncludePaths     bool      `json:"include_paths,omitempty"`
	IncludeDOT       bool      `json:"include_dot,omitempty"`
}

func (r PathsRequest) ToApp() app.PathsRequest {
	return app.PathsRequest{
		Design:           r.Design,
		NumDoses:         r.NumDoses,
		StartDose:        r.StartDose,
		CohortSizes:      r.CohortSizes,
		PreviousOutcomes: r.PreviousOutcomes,
		NextDose:         r.NextDose,
		TrueProbTox:      r.TrueProbTox,
		IncludePaths:     r.IncludePaths,
		IncludeDOT:       r.IncludeDOT,
	}
}

type PathsResponse struct {
	Tree         *app.TreeResult        `json:"tree,omitempty"`
	Crystallised *app.CrystalliseResult `json:"crystallised,omitempty"`
}
