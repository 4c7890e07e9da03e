package calibration

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, c Calibration) (string, error)
	Get(ctx context.Context, calibrationID string) (Calibration, error)
	GetByEmployeeCycle(ctx context.Context, employeeID, cycleID string) (Calibration, error)
	ListByCycle(ctx context.Context, cycleID string) ([]Calibration, error)
	// SetProposal records a proposed adjustment while the calibration still
	// has the expected status. Returns false when another writer won.
	SetProposal(ctx context.Context, calibrationID string, proposed float64, justification, proposedBy, expectStatus, newStatus string) (bool, error)
	// Decide finalizes a calibration while it still has the expected
	// status. Returns false when another writer won.
	Decide(ctx context.Context, calibrationID, decidedBy, reason, expectStatus, newStatus string) (bool, error)

	InsertSession(ctx context.Context, s Session) (string, error)
	GetSession(ctx context.Context, sessionID string) (Session, error)
	ListSessions(ctx context.Context, cycleID string) ([]Session, error)
	UpdateSessionStatus(ctx context.Context, sessionID, fromStatus, toStatus string) (bool, error)
	AttachToSession(ctx context.Context, sessionID, calibrationID string) error
	ListBySession(ctx context.Context, sessionID string) ([]Calibration, error)
}
