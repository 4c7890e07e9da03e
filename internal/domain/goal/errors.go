package goal

import "errors"

var (
	ErrGoalNotFound      = errors.New("goal not found")
	ErrTitleRequired     = errors.New("goal title is required")
	ErrInvalidKind       = errors.New("goal kind must be objective or key-result")
	ErrInvalidVisibility = errors.New("goal visibility must be public, private, or team")
	ErrInvalidWeightage  = errors.New("goal weightage must be between 0 and 100")
	ErrInvalidAlignment  = errors.New("a key result may only align to an objective")
	ErrCyclicAlignment   = errors.New("realignment would create a cycle in the alignment graph")
	ErrSelfAlignment     = errors.New("a goal cannot align to itself")
	ErrNotGoalOwner      = errors.New("only the goal owner, their manager, or HR may modify a goal")
	ErrEmptyComment      = errors.New("comment body is required")
	ErrAlignmentNotFound = errors.New("alignment target does not exist")
)
