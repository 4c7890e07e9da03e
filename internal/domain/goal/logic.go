package goal

import (
	"context"
	"fmt"
	"strings"
)

func validateWeightage(weightage float64) error {
	if weightage < 0 || weightage > 100 {
		return fmt.Errorf("%w: got %v", ErrInvalidWeightage, weightage)
	}
	return nil
}

func clampProgress(progress float64) float64 {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// statusForProgress derives goal status from progress instead of trusting a
// caller-supplied value.
func statusForProgress(progress float64) string {
	switch {
	case progress <= 0:
		return StatusNotStarted
	case progress >= 100:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

type parentLookup func(ctx context.Context, goalID string) (string, error)

// wouldCycle walks the alignment chain upward from candidateParent and
// reports whether goalID is already an ancestor. The walk is bounded by the
// number of goals visited so a corrupt chain cannot spin forever.
func wouldCycle(ctx context.Context, goalID, candidateParent string, parentOf parentLookup) (bool, error) {
	seen := map[string]bool{}
	current := candidateParent
	for current != "" {
		if current == goalID {
			return true, nil
		}
		if seen[current] {
			// Existing corruption upstream of the candidate; refuse anyway.
			return true, nil
		}
		seen[current] = true
		parent, err := parentOf(ctx, current)
		if err != nil {
			return false, err
		}
		current = parent
	}
	return false, nil
}

func diffSummary(before, after Goal) string {
	var parts []string
	if before.Progress != after.Progress {
		parts = append(parts, fmt.Sprintf("progress: %v -> %v", before.Progress, after.Progress))
	}
	if before.Status != after.Status {
		parts = append(parts, fmt.Sprintf("status: %s -> %s", before.Status, after.Status))
	}
	if before.ParentID != after.ParentID {
		from := before.ParentID
		if from == "" {
			from = "none"
		}
		to := after.ParentID
		if to == "" {
			to = "none"
		}
		parts = append(parts, fmt.Sprintf("alignment: %s -> %s", from, to))
	}
	if len(parts) == 0 {
		return "no field changes"
	}
	return strings.Join(parts, "; ")
}
