package cycle

const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusLocked    = "locked"

	TypeAnnual    = "annual"
	TypeMidYear   = "mid-year"
	TypeQuarterly = "quarterly"
)

func ValidType(t string) bool {
	switch t {
	case TypeAnnual, TypeMidYear, TypeQuarterly:
		return true
	}
	return false
}
