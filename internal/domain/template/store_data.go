package template

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

func (s *Store) Insert(ctx context.Context, tmpl Template) (string, error) {
	sectionsJSON, err := json.Marshal(tmpl.Sections)
	if err != nil {
		return "", err
	}
	scaleJSON, err := json.Marshal(tmpl.Scale)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO review_templates (name, version, previous_version_id, scale_json, sections_json)
    VALUES ($1,$2,NULLIF($3,'')::uuid,$4,$5)
    RETURNING id
  `, tmpl.Name, tmpl.Version, tmpl.PreviousVersionID, scaleJSON, sectionsJSON).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, templateID string) (Template, error) {
	var tmpl Template
	var scaleJSON, sectionsJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, version, COALESCE(previous_version_id::text,''), scale_json, sections_json, created_at
    FROM review_templates
    WHERE id = $1
  `, templateID).Scan(&tmpl.ID, &tmpl.Name, &tmpl.Version, &tmpl.PreviousVersionID, &scaleJSON, &sectionsJSON, &tmpl.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, ErrTemplateNotFound
	}
	if err != nil {
		return Template{}, err
	}
	if err := json.Unmarshal(scaleJSON, &tmpl.Scale); err != nil {
		return Template{}, err
	}
	if err := json.Unmarshal(sectionsJSON, &tmpl.Sections); err != nil {
		return Template{}, err
	}
	return tmpl, nil
}

func (s *Store) List(ctx context.Context) ([]Template, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, version, COALESCE(previous_version_id::text,''), scale_json, sections_json, created_at
    FROM review_templates
    ORDER BY name ASC, version DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		var tmpl Template
		var scaleJSON, sectionsJSON []byte
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Version, &tmpl.PreviousVersionID, &scaleJSON, &sectionsJSON, &tmpl.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(scaleJSON, &tmpl.Scale); err != nil {
			continue
		}
		if err := json.Unmarshal(sectionsJSON, &tmpl.Sections); err != nil {
			continue
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

func (s *Store) Update(ctx context.Context, tmpl Template) error {
	sectionsJSON, err := json.Marshal(tmpl.Sections)
	if err != nil {
		return err
	}
	scaleJSON, err := json.Marshal(tmpl.Scale)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE review_templates SET name = $1, scale_json = $2, sections_json = $3 WHERE id = $4
  `, tmpl.Name, scaleJSON, sectionsJSON, tmpl.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *Store) ReferencedByNonDraftCycle(ctx context.Context, templateID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM review_cycles WHERE template_id = $1 AND status <> 'draft'
  `, templateID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
