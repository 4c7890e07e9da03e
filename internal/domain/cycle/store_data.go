package cycle

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfreview/internal/domain/review"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const cycleColumns = `
  id, name, period_label, type, template_id, start_date, end_date,
  self_review_enabled, status, created_at
`

func (s *Store) Insert(ctx context.Context, c ReviewCycle) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO review_cycles (name, period_label, type, template_id, start_date, end_date, self_review_enabled, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, c.Name, c.PeriodLabel, c.Type, c.TemplateID, c.StartDate, c.EndDate, c.SelfReviewEnabled, c.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	if err := replaceRoster(ctx, tx, id, c.Roster); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, cycleID string) (ReviewCycle, error) {
	var c ReviewCycle
	err := s.DB.QueryRow(ctx, `
    SELECT `+cycleColumns+`
    FROM review_cycles
    WHERE id = $1
  `, cycleID).Scan(&c.ID, &c.Name, &c.PeriodLabel, &c.Type, &c.TemplateID,
		&c.StartDate, &c.EndDate, &c.SelfReviewEnabled, &c.Status, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ReviewCycle{}, ErrCycleNotFound
	}
	if err != nil {
		return ReviewCycle{}, err
	}
	if c.Roster, err = s.roster(ctx, cycleID); err != nil {
		return ReviewCycle{}, err
	}
	return c, nil
}

func (s *Store) List(ctx context.Context, status string) ([]ReviewCycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM review_cycles`
	var args []any
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY start_date DESC, id ASC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReviewCycle
	for rows.Next() {
		var c ReviewCycle
		if err := rows.Scan(&c.ID, &c.Name, &c.PeriodLabel, &c.Type, &c.TemplateID,
			&c.StartDate, &c.EndDate, &c.SelfReviewEnabled, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateDraft(ctx context.Context, c ReviewCycle) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE review_cycles
    SET name = $1, period_label = $2, type = $3, template_id = $4,
        start_date = $5, end_date = $6, self_review_enabled = $7
    WHERE id = $8 AND status = $9
  `, c.Name, c.PeriodLabel, c.Type, c.TemplateID, c.StartDate, c.EndDate, c.SelfReviewEnabled, c.ID, StatusDraft)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if err := replaceRoster(ctx, tx, c.ID, c.Roster); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Activate(ctx context.Context, cycleID string, seeds []ReviewSeed) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE review_cycles SET status = $1 WHERE id = $2 AND status = $3
  `, StatusActive, cycleID, StatusDraft)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for _, seed := range seeds {
		var reviewID string
		err := tx.QueryRow(ctx, `
      INSERT INTO performance_reviews (cycle_id, reviewee_id, due_date)
      VALUES ($1,$2,$3)
      RETURNING id
    `, cycleID, seed.RevieweeID, seed.DueDate).Scan(&reviewID)
		if err != nil {
			return false, err
		}
		for _, sub := range seed.SubReviews {
			_, err := tx.Exec(ctx, `
        INSERT INTO sub_reviews (review_id, kind, reviewer_id, status)
        VALUES ($1,$2,$3,$4)
      `, reviewID, sub.Kind, sub.ReviewerID, review.SubStatusPending)
			if err != nil {
				return false, err
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Transition(ctx context.Context, cycleID, fromStatus, toStatus string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE review_cycles SET status = $1 WHERE id = $2 AND status = $3
  `, toStatus, cycleID, fromStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) LockCascade(ctx context.Context, cycleID string) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE review_cycles SET status = $1 WHERE id = $2 AND status = $3
  `, StatusLocked, cycleID, StatusCompleted)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if _, err := tx.Exec(ctx, `
    UPDATE performance_reviews SET locked = true WHERE cycle_id = $1
  `, cycleID); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE ratings SET status = 'locked', version = version + 1
    WHERE cycle_id = $1 AND status <> 'locked'
  `, cycleID); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) roster(ctx context.Context, cycleID string) ([]RosterEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT reviewee_id, manager_reviewer_id, peer_reviewer_ids
    FROM cycle_roster
    WHERE cycle_id = $1
    ORDER BY reviewee_id ASC
  `, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RosterEntry
	for rows.Next() {
		var entry RosterEntry
		if err := rows.Scan(&entry.RevieweeID, &entry.ManagerReviewerID, &entry.PeerReviewerIDs); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func replaceRoster(ctx context.Context, tx pgx.Tx, cycleID string, roster []RosterEntry) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cycle_roster WHERE cycle_id = $1`, cycleID); err != nil {
		return err
	}
	for _, entry := range roster {
		_, err := tx.Exec(ctx, `
      INSERT INTO cycle_roster (cycle_id, reviewee_id, manager_reviewer_id, peer_reviewer_ids)
      VALUES ($1,$2,$3,$4)
    `, cycleID, entry.RevieweeID, entry.ManagerReviewerID, entry.PeerReviewerIDs)
		if err != nil {
			return err
		}
	}
	return nil
}
