package domain

// EstimateScale is the fixed ordinal scale votes and final estimates must
// belong to (Fibonacci-like story points).
var EstimateScale = []int{1, 2, 3, 5, 8, 13, 21}

// ValidEstimate reports whether v is a member of the estimate scale.
func ValidEstimate(v int) bool {
	for _, s := range EstimateScale {
		if v == s {
			return true
		}
	}
	return false
}
