// internal/dosepath/nodecount.go
package dosepath

// NumDosePathNodes returns, per depth, how many nodes a fully expanded dose-path
// tree holds when no model ever stops: entry 0 is the root (always 1), entry d
// multiplies the previous depth by the number of distinct outcome-count
// combinations of cohort d. For k-ary patient outcomes a cohort of n patients
// has C(n+k-1, k-1) combinations (stars and bars); for binary outcomes that is
// n+1. Real trees stop early, so this is an upper bound for planning and
// validation, not an exact census.
func NumDosePathNodes(numPatientOutcomes int, cohortSizes []int) ([]int64, error) {
	if numPatientOutcomes < 2 {
		return nil, &ConfigError{Reason: "num patient outcomes must be at least 2"}
	}
	if len(cohortSizes) == 0 {
		return nil, &ConfigError{Reason: "cohort sizes must not be empty"}
	}

	counts := make([]int64, len(cohortSizes)+1)
	counts[0] = 1
	for d, n := range cohortSizes {
		if n < 1 {
			return nil, &ConfigError{Reason: "cohort size must be positive"}
		}
		counts[d+1] = counts[d] * Choose(n+numPatientOutcomes-1, numPatientOutcomes-1)
	}
	return counts, nil
}
