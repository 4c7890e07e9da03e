package goal

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Insert(ctx context.Context, g Goal) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO goals (title, kind, owner_id, department, start_date, end_date, weightage, progress, status, parent_id, visibility)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,'')::uuid,$11)
    RETURNING id
  `, g.Title, g.Kind, g.OwnerID, g.Department, g.StartDate, g.EndDate, g.Weightage, g.Progress, g.Status, g.ParentID, g.Visibility).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, goalID string) (Goal, error) {
	var g Goal
	err := s.DB.QueryRow(ctx, `
    SELECT id, title, kind, owner_id, COALESCE(department,''), start_date, end_date, weightage, progress, status, COALESCE(parent_id::text,''), visibility, created_at, updated_at
    FROM goals
    WHERE id = $1
  `, goalID).Scan(&g.ID, &g.Title, &g.Kind, &g.OwnerID, &g.Department, &g.StartDate, &g.EndDate, &g.Weightage, &g.Progress, &g.Status, &g.ParentID, &g.Visibility, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Goal{}, ErrGoalNotFound
	}
	if err != nil {
		return Goal{}, err
	}
	return g, nil
}

func (s *Store) ParentID(ctx context.Context, goalID string) (string, error) {
	var parentID string
	err := s.DB.QueryRow(ctx, "SELECT COALESCE(parent_id::text,'') FROM goals WHERE id = $1", goalID).Scan(&parentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrGoalNotFound
	}
	if err != nil {
		return "", err
	}
	return parentID, nil
}

func (s *Store) UpdateProgress(ctx context.Context, goalID string, progress float64, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goals SET progress = $1, status = $2, updated_at = now() WHERE id = $3
  `, progress, status, goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (s *Store) UpdateParent(ctx context.Context, goalID, parentID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goals SET parent_id = NULLIF($1,'')::uuid, updated_at = now() WHERE id = $2
  `, parentID, goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Goal, error) {
	query := `
    SELECT id, title, kind, owner_id, COALESCE(department,''), start_date, end_date, weightage, progress, status, COALESCE(parent_id::text,''), visibility, created_at, updated_at
    FROM goals
    WHERE 1=1
  `
	var args []any
	arg := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.OwnerID != "" {
		query += " AND owner_id = " + arg(filter.OwnerID)
	}
	if filter.Department != "" {
		query += " AND department = " + arg(filter.Department)
	}
	if filter.Status != "" {
		query += " AND status = " + arg(filter.Status)
	}
	if !filter.Privileged {
		query += " AND (visibility IN ('public','team') OR owner_id = " + arg(filter.ViewerID) + ")"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.Title, &g.Kind, &g.OwnerID, &g.Department, &g.StartDate, &g.EndDate, &g.Weightage, &g.Progress, &g.Status, &g.ParentID, &g.Visibility, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) InsertComment(ctx context.Context, c Comment) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO goal_comments (goal_id, author_id, body) VALUES ($1,$2,$3)
  `, c.GoalID, c.AuthorID, c.Body)
	return err
}

func (s *Store) ListComments(ctx context.Context, goalID string) ([]Comment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, goal_id, author_id, body, created_at
    FROM goal_comments
    WHERE goal_id = $1
    ORDER BY created_at ASC
  `, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.GoalID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) AppendHistory(ctx context.Context, entry EditEntry) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO goal_history (goal_id, actor_id, summary) VALUES ($1,$2,$3)
  `, entry.GoalID, entry.ActorID, entry.Summary)
	return err
}

func (s *Store) ListHistory(ctx context.Context, goalID string) ([]EditEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, goal_id, actor_id, summary, created_at
    FROM goal_history
    WHERE goal_id = $1
    ORDER BY created_at ASC
  `, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []EditEntry
	for rows.Next() {
		var entry EditEntry
		if err := rows.Scan(&entry.ID, &entry.GoalID, &entry.ActorID, &entry.Summary, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
