package goal

const (
	KindObjective = "objective"
	KindKeyResult = "key-result"

	StatusNotStarted = "not-started"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"

	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
	VisibilityTeam    = "team"
)

func ValidKind(kind string) bool {
	return kind == KindObjective || kind == KindKeyResult
}

func ValidVisibility(visibility string) bool {
	switch visibility {
	case VisibilityPublic, VisibilityPrivate, VisibilityTeam:
		return true
	}
	return false
}
