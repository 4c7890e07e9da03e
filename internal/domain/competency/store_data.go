package competency

import (
	"context"
	"encoding/json"
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

func (s *Store) Insert(ctx context.Context, c Competency) (string, error) {
	criteriaJSON, err := json.Marshal(c.Criteria)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO competencies (name, category, departments, criteria_json)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, c.Name, c.Category, c.Departments, criteriaJSON).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, competencyID string) (Competency, error) {
	return s.getBy(ctx, "id = $1", competencyID)
}

func (s *Store) GetByName(ctx context.Context, name string) (Competency, error) {
	return s.getBy(ctx, "name = $1", name)
}

func (s *Store) getBy(ctx context.Context, where string, arg any) (Competency, error) {
	var c Competency
	var criteriaJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, category, departments, criteria_json, created_at
    FROM competencies
    WHERE `+where, arg).Scan(&c.ID, &c.Name, &c.Category, &c.Departments, &criteriaJSON, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Competency{}, ErrCompetencyNotFound
	}
	if err != nil {
		return Competency{}, err
	}
	if err := json.Unmarshal(criteriaJSON, &c.Criteria); err != nil {
		c.Criteria = nil
	}
	return c, nil
}

func (s *Store) List(ctx context.Context, department string) ([]Competency, error) {
	query := `
    SELECT id, name, category, departments, criteria_json, created_at
    FROM competencies
  `
	var args []any
	if department != "" {
		query += " WHERE $1 = ANY(departments) OR departments = '{}'"
		args = append(args, department)
	}
	query += " ORDER BY name ASC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Competency
	for rows.Next() {
		var c Competency
		var criteriaJSON []byte
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Departments, &criteriaJSON, &c.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(criteriaJSON, &c.Criteria); err != nil {
			c.Criteria = nil
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, c Competency) error {
	criteriaJSON, err := json.Marshal(c.Criteria)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE competencies SET name = $1, category = $2, departments = $3, criteria_json = $4 WHERE id = $5
  `, c.Name, c.Category, c.Departments, criteriaJSON, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCompetencyNotFound
	}
	return nil
}

func (s *Store) ReferencedBySubmittedRating(ctx context.Context, competencyID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM rating_scores rs
    JOIN ratings r ON r.id = rs.rating_id
    WHERE rs.competency_id = $1 AND r.status <> 'draft'
  `, competencyID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
