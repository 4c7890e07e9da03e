package calibration

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const calibrationColumns = `
  id, cycle_id, employee_id, rating_id, COALESCE(session_id::text, ''),
  original_rating, proposed_rating, justification, status,
  proposed_by, decided_by, decide_reason, decided_at, version, created_at
`

func (s *Store) Insert(ctx context.Context, c Calibration) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO calibrations (cycle_id, employee_id, rating_id, original_rating, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, c.CycleID, c.EmployeeID, c.RatingID, c.OriginalRating, c.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, calibrationID string) (Calibration, error) {
	return s.getBy(ctx, "id = $1", calibrationID)
}

func (s *Store) GetByEmployeeCycle(ctx context.Context, employeeID, cycleID string) (Calibration, error) {
	return s.getBy(ctx, "employee_id = $1 AND cycle_id = $2", employeeID, cycleID)
}

func (s *Store) getBy(ctx context.Context, where string, args ...any) (Calibration, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+calibrationColumns+` FROM calibrations WHERE `+where, args...)
	c, err := scanCalibration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Calibration{}, ErrCalibrationNotFound
	}
	return c, err
}

func (s *Store) ListByCycle(ctx context.Context, cycleID string) ([]Calibration, error) {
	return s.list(ctx, "cycle_id = $1", cycleID)
}

func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]Calibration, error) {
	return s.list(ctx, "session_id = $1", sessionID)
}

func (s *Store) list(ctx context.Context, where string, arg any) ([]Calibration, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+calibrationColumns+`
    FROM calibrations
    WHERE `+where+`
    ORDER BY created_at ASC, id ASC
  `, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Calibration
	for rows.Next() {
		c, err := scanCalibration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCalibration(row pgx.Row) (Calibration, error) {
	var c Calibration
	err := row.Scan(&c.ID, &c.CycleID, &c.EmployeeID, &c.RatingID, &c.SessionID,
		&c.OriginalRating, &c.ProposedRating, &c.Justification, &c.Status,
		&c.ProposedBy, &c.DecidedBy, &c.DecideReason, &c.DecidedAt, &c.Version, &c.CreatedAt)
	return c, err
}

func (s *Store) SetProposal(ctx context.Context, calibrationID string, proposed float64, justification, proposedBy, expectStatus, newStatus string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE calibrations
    SET proposed_rating = $1, justification = $2, proposed_by = $3,
        status = $4, version = version + 1
    WHERE id = $5 AND status = $6
  `, proposed, justification, proposedBy, newStatus, calibrationID, expectStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) Decide(ctx context.Context, calibrationID, decidedBy, reason, expectStatus, newStatus string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE calibrations
    SET status = $1, decided_by = $2, decide_reason = $3, decided_at = now(),
        version = version + 1
    WHERE id = $4 AND status = $5
  `, newStatus, decidedBy, reason, calibrationID, expectStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) InsertSession(ctx context.Context, session Session) (string, error) {
	if session.ParticipantIDs == nil {
		session.ParticipantIDs = []string{}
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO calibration_sessions (cycle_id, name, department, scheduled_at, facilitator_id, participant_ids, notes, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, session.CycleID, session.Name, session.Department, session.ScheduledAt,
		session.FacilitatorID, session.ParticipantIDs, session.Notes, session.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (Session, error) {
	var session Session
	err := s.DB.QueryRow(ctx, `
    SELECT id, cycle_id, name, department, scheduled_at, facilitator_id,
           participant_ids, notes, status, completed_at, created_at
    FROM calibration_sessions
    WHERE id = $1
  `, sessionID).Scan(&session.ID, &session.CycleID, &session.Name, &session.Department,
		&session.ScheduledAt, &session.FacilitatorID, &session.ParticipantIDs,
		&session.Notes, &session.Status, &session.CompletedAt, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id FROM calibrations WHERE session_id = $1 ORDER BY created_at ASC, id ASC
  `, sessionID)
	if err != nil {
		return Session{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return Session{}, err
		}
		session.CalibrationIDs = append(session.CalibrationIDs, id)
	}
	return session, rows.Err()
}

func (s *Store) ListSessions(ctx context.Context, cycleID string) ([]Session, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, cycle_id, name, department, scheduled_at, facilitator_id,
           participant_ids, notes, status, completed_at, created_at
    FROM calibration_sessions
    WHERE cycle_id = $1
    ORDER BY scheduled_at ASC, id ASC
  `, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var session Session
		if err := rows.Scan(&session.ID, &session.CycleID, &session.Name, &session.Department,
			&session.ScheduledAt, &session.FacilitatorID, &session.ParticipantIDs,
			&session.Notes, &session.Status, &session.CompletedAt, &session.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID, fromStatus, toStatus string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE calibration_sessions
    SET status = $1,
        completed_at = CASE WHEN $1 = 'completed' THEN now() ELSE completed_at END
    WHERE id = $2 AND status = $3
  `, toStatus, sessionID, fromStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) AttachToSession(ctx context.Context, sessionID, calibrationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE calibrations SET session_id = $1 WHERE id = $2
  `, sessionID, calibrationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCalibrationNotFound
	}
	return nil
}
