package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/actstream/pkg/relations"
	"github.com/mesh-intelligence/actstream/pkg/types"
)

// timeFormat keeps stored timestamps fixed-width so text ordering matches
// time ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SaveAction creates or updates an Action. When ActionID is empty a UUID v7
// is generated; a zero Timestamp is set to the current time. Returns the
// action ID.
func (b *Backend) SaveAction(ctx context.Context, a *types.Action) (string, error) {
	if a == nil {
		return "", types.ErrInvalidID
	}
	if err := a.Validate(); err != nil {
		return "", err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return "", types.ErrBackendDetached
	}

	if a.ActionID == "" {
		a.ActionID = generateUUID()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	a.Timestamp = a.Timestamp.UTC()

	_, err := b.db.ExecContext(ctx, `INSERT INTO actions (`+actionColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(action_id) DO UPDATE SET
    actor_content_type = excluded.actor_content_type,
    actor_object_id = excluded.actor_object_id,
    verb = excluded.verb,
    description = excluded.description,
    target_content_type = excluded.target_content_type,
    target_object_id = excluded.target_object_id,
    action_object_content_type = excluded.action_object_content_type,
    action_object_object_id = excluded.action_object_object_id,
    timestamp = excluded.timestamp,
    public = excluded.public`,
		a.ActionID, a.ActorContentType, a.ActorObjectID, a.Verb, a.Description,
		a.TargetContentType, a.TargetObjectID, a.ActionObjectContentType, a.ActionObjectObjectID,
		a.Timestamp.Format(timeFormat), a.Public,
	)
	if err != nil {
		return "", fmt.Errorf("persisting action: %w", err)
	}
	return a.ActionID, nil
}

// GetAction retrieves an action by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if no action has that ID.
func (b *Backend) GetAction(ctx context.Context, id string) (*types.Action, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	row := b.db.QueryRowContext(ctx, "SELECT "+actionColumns+" FROM actions WHERE action_id = ?", id)
	a, err := hydrateAction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting action %s: %w", id, err)
	}
	return a, nil
}

// DeleteAction removes an action by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if no action has that ID.
func (b *Backend) DeleteAction(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrBackendDetached
	}

	res, err := b.db.ExecContext(ctx, "DELETE FROM actions WHERE action_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting action: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting action: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// RelatedActions returns the actions whose columns named by rel point at the
// rel.Owner instance with the given object ID, newest first.
func (b *Backend) RelatedActions(ctx context.Context, rel *relations.Relation, objectID string) ([]*types.Action, error) {
	if rel == nil || !genericColumns[rel.ContentTypeField] || !genericColumns[rel.ObjectIDField] {
		return nil, fmt.Errorf("%w: relation %v does not map to action columns", types.ErrInvalidRole, rel)
	}
	if objectID == "" {
		return nil, types.ErrInvalidID
	}

	query := fmt.Sprintf(
		"SELECT %s FROM actions WHERE %s = ? AND %s = ? ORDER BY timestamp DESC, action_id DESC",
		actionColumns, rel.ContentTypeField, rel.ObjectIDField,
	)
	return b.queryActions(ctx, query, rel.Owner.String(), objectID)
}

// AllActions returns every stored action, oldest first.
func (b *Backend) AllActions(ctx context.Context) ([]*types.Action, error) {
	return b.queryActions(ctx, "SELECT "+actionColumns+" FROM actions ORDER BY timestamp, action_id")
}

func (b *Backend) queryActions(ctx context.Context, query string, args ...any) ([]*types.Action, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching actions: %w", err)
	}
	defer rows.Close()

	results := []*types.Action{}
	for rows.Next() {
		a, err := hydrateAction(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating action: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actions: %w", err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// hydrateAction converts a single row into a *types.Action.
func hydrateAction(row rowScanner) (*types.Action, error) {
	var a types.Action
	var ts string
	if err := row.Scan(
		&a.ActionID, &a.ActorContentType, &a.ActorObjectID, &a.Verb, &a.Description,
		&a.TargetContentType, &a.TargetObjectID, &a.ActionObjectContentType, &a.ActionObjectObjectID,
		&ts, &a.Public,
	); err != nil {
		return nil, err
	}
	var err error
	a.Timestamp, err = time.Parse(timeFormat, ts)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}
	return &a, nil
}
