package review

// DeriveOverallStatus computes a review's overall status from its full
// sub-review set. It is a pure function: recomputed on every read and write,
// order-independent over submission arrival, and bypassed entirely once the
// review is locked.
func DeriveOverallStatus(locked bool, subReviews []SubReview) string {
	if locked {
		return OverallLocked
	}
	if len(subReviews) == 0 {
		return OverallNotStarted
	}

	submitted := 0
	for _, sub := range subReviews {
		if sub.Status == SubStatusSubmitted {
			submitted++
		}
	}
	switch {
	case submitted == 0:
		return OverallNotStarted
	case submitted < len(subReviews):
		return OverallInProgress
	default:
		return OverallCompleted
	}
}
