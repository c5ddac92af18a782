package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"bruce/internal/domain/models"
	"bruce/internal/domain/repositories"
)

// updatableColumns are the counters Patch may write.
var updatableColumns = map[string]bool{
	models.ColumnInputTokens:  true,
	models.ColumnOutputTokens: true,
	models.ColumnSessions:     true,
	models.ColumnUploads:      true,
	models.ColumnClicks:       true,
}

// PostgresUsageRepository implements UsageRepository over a direct database connection.
type PostgresUsageRepository struct {
	db     repositories.DBTX
	tables *TableNames
	logger *slog.Logger
}

func NewUsageRepository(db repositories.DBTX, tables *TableNames, logger *slog.Logger) repositories.UsageRepository {
	return &PostgresUsageRepository{db: db, tables: tables, logger: logger}
}

func (r *PostgresUsageRepository) FindByEmail(ctx context.Context, appID, email string) (*models.UsageRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, app_id, email,
		       COALESCE(input_tokens, 0), COALESCE(output_tokens, 0),
		       COALESCE(sessions, 0), COALESCE(uploads, 0), COALESCE(clicks, 0),
		       COALESCE(credits, 0), COALESCE(revenue, 0), COALESCE(cost, 0)
		FROM %s
		WHERE app_id = $1 AND email = $2
		LIMIT 1
	`, r.tables.UserAccounts)

	var rec models.UsageRecord
	err := r.db.QueryRow(ctx, query, appID, email).Scan(
		&rec.ID, &rec.AppID, &rec.Email,
		&rec.InputTokens, &rec.OutputTokens,
		&rec.Sessions, &rec.Uploads, &rec.Clicks,
		&rec.Credits, &rec.Revenue, &rec.Cost,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find usage record: %w", err)
	}
	return &rec, nil
}

func (r *PostgresUsageRepository) Patch(ctx context.Context, id string, changes map[string]int64) error {
	query, args, err := buildPatch(r.tables.UserAccounts, id, changes)
	if err != nil {
		return err
	}
	if query == "" {
		return nil
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("patch usage record %s: %w", id, err)
	}
	return nil
}

func (r *PostgresUsageRepository) Create(ctx context.Context, rec *models.UsageRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, app_id, email, input_tokens, output_tokens,
		                sessions, uploads, clicks, credits, revenue, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.tables.UserAccounts)

	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.AppID, rec.Email,
		rec.InputTokens, rec.OutputTokens,
		rec.Sessions, rec.Uploads, rec.Clicks,
		rec.Credits, rec.Revenue, rec.Cost,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			r.logger.Debug("usage record already exists", "email", rec.Email)
		}
		return fmt.Errorf("create usage record: %w", err)
	}
	return nil
}

// buildPatch renders an UPDATE for the given counters. Column names come
// from a fixed allow-list; values are bound as parameters. It returns an
// empty query when there is nothing to write.
func buildPatch(table, id string, changes map[string]int64) (string, []any, error) {
	if len(changes) == 0 {
		return "", nil, nil
	}

	columns := make([]string, 0, len(changes))
	for col := range changes {
		if !updatableColumns[col] {
			return "", nil, fmt.Errorf("patch usage record: unknown column %q", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	sets := make([]string, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, changes[col])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args))
	return query, args, nil
}
