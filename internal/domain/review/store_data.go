package review

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const reviewColumns = `
    pr.id, pr.cycle_id, rc.template_id, pr.reviewee_id, pr.due_date, pr.locked, pr.created_at
`

func (s *Store) GetReview(ctx context.Context, reviewID string) (PerformanceReview, error) {
	return s.getReviewWhere(ctx, "pr.id = $1", reviewID)
}

func (s *Store) GetReviewByCycleEmployee(ctx context.Context, cycleID, employeeID string) (PerformanceReview, error) {
	return s.getReviewWhere(ctx, "pr.cycle_id = $1 AND pr.reviewee_id = $2", cycleID, employeeID)
}

func (s *Store) getReviewWhere(ctx context.Context, where string, args ...any) (PerformanceReview, error) {
	var rev PerformanceReview
	err := s.DB.QueryRow(ctx, `
    SELECT `+reviewColumns+`
    FROM performance_reviews pr
    JOIN review_cycles rc ON rc.id = pr.cycle_id
    WHERE `+where, args...).Scan(&rev.ID, &rev.CycleID, &rev.TemplateID, &rev.RevieweeID, &rev.DueDate, &rev.Locked, &rev.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PerformanceReview{}, ErrReviewNotFound
	}
	if err != nil {
		return PerformanceReview{}, err
	}
	return rev, nil
}

func (s *Store) ListReviewsByCycle(ctx context.Context, cycleID string) ([]PerformanceReview, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+reviewColumns+`
    FROM performance_reviews pr
    JOIN review_cycles rc ON rc.id = pr.cycle_id
    WHERE pr.cycle_id = $1
    ORDER BY pr.created_at ASC
  `, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []PerformanceReview
	for rows.Next() {
		var rev PerformanceReview
		if err := rows.Scan(&rev.ID, &rev.CycleID, &rev.TemplateID, &rev.RevieweeID, &rev.DueDate, &rev.Locked, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

func (s *Store) ListSubReviews(ctx context.Context, reviewID string) ([]SubReview, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, review_id, kind, reviewer_id, status, responses_json, COALESCE(comments,''), submitted_at
    FROM sub_reviews
    WHERE review_id = $1
    ORDER BY kind ASC, reviewer_id ASC
  `, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subReviews []SubReview
	for rows.Next() {
		var sub SubReview
		var responsesJSON []byte
		var submittedAt *time.Time
		if err := rows.Scan(&sub.ID, &sub.ReviewID, &sub.Kind, &sub.ReviewerID, &sub.Status, &responsesJSON, &sub.Comments, &submittedAt); err != nil {
			return nil, err
		}
		if len(responsesJSON) > 0 {
			if err := json.Unmarshal(responsesJSON, &sub.Responses); err != nil {
				sub.Responses = nil
			}
		}
		sub.SubmittedAt = submittedAt
		subReviews = append(subReviews, sub)
	}
	return subReviews, rows.Err()
}

func (s *Store) SubmitSubReview(ctx context.Context, sub SubReview, expectStatus string) (bool, error) {
	responsesJSON, err := json.Marshal(sub.Responses)
	if err != nil {
		return false, err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE sub_reviews
    SET status = $1, responses_json = $2, comments = $3, submitted_at = now()
    WHERE id = $4 AND status = $5
  `, SubStatusSubmitted, responsesJSON, sub.Comments, sub.ID, expectStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO review_history (review_id, action, performed_by) VALUES ($1,$2,$3)
  `, entry.ReviewID, entry.Action, entry.PerformedBy)
	return err
}

func (s *Store) ListHistory(ctx context.Context, reviewID string) ([]HistoryEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, review_id, action, performed_by, created_at
    FROM review_history
    WHERE review_id = $1
    ORDER BY created_at ASC
  `, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.ReviewID, &entry.Action, &entry.PerformedBy, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) ListPendingForReviewer(ctx context.Context, reviewerID string) ([]PendingItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT pr.id, pr.cycle_id, pr.reviewee_id, sr.kind, pr.due_date
    FROM sub_reviews sr
    JOIN performance_reviews pr ON pr.id = sr.review_id
    JOIN review_cycles rc ON rc.id = pr.cycle_id
    WHERE sr.reviewer_id = $1 AND sr.status = $2 AND pr.locked = false AND rc.status = 'active'
    ORDER BY pr.due_date ASC
  `, reviewerID, SubStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PendingItem
	for rows.Next() {
		var item PendingItem
		if err := rows.Scan(&item.ReviewID, &item.CycleID, &item.RevieweeID, &item.Kind, &item.DueDate); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
