package rating

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

func (s *Store) Get(ctx context.Context, employeeID, cycleID string) (Rating, error) {
	return s.getBy(ctx, "employee_id = $1 AND cycle_id = $2", employeeID, cycleID)
}

func (s *Store) GetByID(ctx context.Context, ratingID string) (Rating, error) {
	return s.getBy(ctx, "id = $1", ratingID)
}

func (s *Store) getBy(ctx context.Context, where string, args ...any) (Rating, error) {
	var r Rating
	err := s.DB.QueryRow(ctx, `
    SELECT id, cycle_id, employee_id, status, final_rating, version, created_at
    FROM ratings
    WHERE `+where, args...).Scan(&r.ID, &r.CycleID, &r.EmployeeID, &r.Status, &r.FinalRating, &r.Version, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rating{}, ErrRatingNotFound
	}
	if err != nil {
		return Rating{}, err
	}
	if r.Scores, err = s.listScores(ctx, r.ID); err != nil {
		return Rating{}, err
	}
	if r.Snapshots, err = s.ListSnapshots(ctx, r.ID); err != nil {
		return Rating{}, err
	}
	return r, nil
}

func (s *Store) Insert(ctx context.Context, r Rating) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO ratings (cycle_id, employee_id, status, final_rating)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, r.CycleID, r.EmployeeID, r.Status, r.FinalRating).Scan(&id)
	if err != nil {
		return "", err
	}
	if err := insertScores(ctx, tx, id, r.Scores); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// ReplaceScores swaps the full score set and recomputed final rating, but
// only while the rating still has the expected status. Returns false when
// another writer got there first.
func (s *Store) ReplaceScores(ctx context.Context, ratingID string, scores []CompetencyScore, finalRating float64, expectStatus string) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE ratings
    SET final_rating = $1, version = version + 1
    WHERE id = $2 AND status = $3
  `, finalRating, ratingID, expectStatus)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if _, err := tx.Exec(ctx, `DELETE FROM rating_scores WHERE rating_id = $1`, ratingID); err != nil {
		return false, err
	}
	if err := insertScores(ctx, tx, ratingID, scores); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) TransitionStatus(ctx context.Context, ratingID, fromStatus, toStatus string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE ratings
    SET status = $1, version = version + 1
    WHERE id = $2 AND status = $3
  `, toStatus, ratingID, fromStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) AppendSnapshot(ctx context.Context, snapshot Snapshot) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO rating_snapshots (rating_id, value, cycle_id, source)
    VALUES ($1,$2,$3,$4)
  `, snapshot.RatingID, snapshot.Value, snapshot.CycleID, snapshot.Source)
	return err
}

func (s *Store) ListSnapshots(ctx context.Context, ratingID string) ([]Snapshot, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, rating_id, value, cycle_id, source, created_at
    FROM rating_snapshots
    WHERE rating_id = $1
    ORDER BY created_at ASC, id ASC
  `, ratingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(&sn.ID, &sn.RatingID, &sn.Value, &sn.CycleID, &sn.Source, &sn.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}

func (s *Store) listScores(ctx context.Context, ratingID string) ([]CompetencyScore, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT competency_id, score, weightage, comment
    FROM rating_scores
    WHERE rating_id = $1
    ORDER BY competency_id ASC
  `, ratingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CompetencyScore
	for rows.Next() {
		var cs CompetencyScore
		if err := rows.Scan(&cs.CompetencyID, &cs.Score, &cs.Weightage, &cs.Comment); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func insertScores(ctx context.Context, tx pgx.Tx, ratingID string, scores []CompetencyScore) error {
	for _, cs := range scores {
		_, err := tx.Exec(ctx, `
      INSERT INTO rating_scores (rating_id, competency_id, score, weightage, comment)
      VALUES ($1,$2,$3,$4,$5)
    `, ratingID, cs.CompetencyID, cs.Score, cs.Weightage, cs.Comment)
		if err != nil {
			return err
		}
	}
	return nil
}
