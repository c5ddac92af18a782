package postgres

import (
	"context"
	"fmt"

	"bruce/internal/domain/repositories"
)

// PostgresPromptRepository reads prompt overrides over a direct database connection.
type PostgresPromptRepository struct {
	db     repositories.DBTX
	tables *TableNames
}

func NewPromptRepository(db repositories.DBTX, tables *TableNames) repositories.PromptRepository {
	return &PostgresPromptRepository{db: db, tables: tables}
}

func (r *PostgresPromptRepository) ListPrompts(ctx context.Context, appID string) (map[string]string, error) {
	query := fmt.Sprintf(`SELECT id, text FROM %s WHERE app_id = $1 AND text IS NOT NULL`, r.tables.Prompts)

	rows, err := r.db.Query(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	prompts := make(map[string]string)
	for rows.Next() {
		var id, text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts[id] = text
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}
	return prompts, nil
}
