package repository

import (
	"context"
	"database/sql"
	"fmt"

	"telemarketing/internal/model"
)

// PlaybookRepository stores feature descriptions in feature_playbook.
type PlaybookRepository struct {
	DB *sql.DB
}

func (r *PlaybookRepository) Load(ctx context.Context) (model.FeaturePlaybook, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT feature, description
		FROM feature_playbook
	`)
	if err != nil {
		return nil, fmt.Errorf("load playbook: %w", err)
	}
	defer rows.Close()

	book := make(model.FeaturePlaybook)
	for rows.Next() {
		var feature, desc string
		if err := rows.Scan(&feature, &desc); err != nil {
			return nil, fmt.Errorf("scan playbook row: %w", err)
		}
		book[feature] = desc
	}
	return book, rows.Err()
}

func (r *PlaybookRepository) Upsert(ctx context.Context, feature, description string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO feature_playbook (feature, description, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (feature) DO UPDATE
		SET description = EXCLUDED.description, updated_at = now()
	`, feature, description)
	if err != nil {
		return fmt.Errorf("upsert playbook %s: %w", feature, err)
	}
	return nil
}

// Save upserts every entry of book and returns how many were written.
func (r *PlaybookRepository) Save(ctx context.Context, book model.FeaturePlaybook) (int, error) {
	n := 0
	for feature, desc := range book {
		if err := r.Upsert(ctx, feature, desc); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
