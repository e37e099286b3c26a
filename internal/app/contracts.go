package app

type PathsService interface {
	Enumerate(req PathsRequest) (*TreeResult, error)
	Crystallise(req PathsRequest) (*CrystalliseResult, error)
}
