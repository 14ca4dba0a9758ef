package database

import (
	"context"
	"fmt"
	"time"

	"skynest/internal/models"
)

const maxActivityLimit = 500

func (db *DB) RecordActivity(ctx context.Context, a *models.Activity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	query := `INSERT INTO activity_log (actor_id, actor_role, branch_id, action, entity_type, entity_id, details, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		a.ActorID,
		string(a.ActorRole),
		a.BranchID,
		a.Action,
		a.EntityType,
		a.EntityID,
		a.Details,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	a.ID = id
	return nil
}

// RecentActivity returns the newest entries first. branchID 0 means every branch.
func (db *DB) RecentActivity(ctx context.Context, branchID int64, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	query := `SELECT id, actor_id, actor_role, branch_id, action, entity_type, entity_id, COALESCE(details, ''), created_at
              FROM activity_log
              WHERE (? = 0 OR branch_id = ?)
              ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, branchID, branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent activity: %w", err)
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		var role string
		if err := rows.Scan(&a.ID, &a.ActorID, &role, &a.BranchID, &a.Action, &a.EntityType, &a.EntityID, &a.Details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.ActorRole = models.Role(role)
		out = append(out, a)
	}
	return out, rows.Err()
}

// PurgeActivity deletes entries older than cutoff and reports how many went.
func (db *DB) PurgeActivity(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM activity_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge activity: %w", err)
	}
	return result.RowsAffected()
}
