package sqlite

import "github.com/mesh-intelligence/actstream/pkg/types"

// Schema DDL. Statements are idempotent so Attach can run them on an
// existing database.
const (
	createActions = `CREATE TABLE IF NOT EXISTS actions (
    action_id TEXT PRIMARY KEY,
    actor_content_type TEXT NOT NULL,
    actor_object_id TEXT NOT NULL,
    verb TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    target_content_type TEXT NOT NULL DEFAULT '',
    target_object_id TEXT NOT NULL DEFAULT '',
    action_object_content_type TEXT NOT NULL DEFAULT '',
    action_object_object_id TEXT NOT NULL DEFAULT '',
    timestamp TEXT NOT NULL,
    public INTEGER NOT NULL DEFAULT 1
);`
)

// Index DDL, one per generic relation column pair.
const (
	idxActionsActor        = `CREATE INDEX IF NOT EXISTS idx_actions_actor ON actions(actor_content_type, actor_object_id);`
	idxActionsTarget       = `CREATE INDEX IF NOT EXISTS idx_actions_target ON actions(target_content_type, target_object_id);`
	idxActionsActionObject = `CREATE INDEX IF NOT EXISTS idx_actions_action_object ON actions(action_object_content_type, action_object_object_id);`
	idxActionsTimestamp    = `CREATE INDEX IF NOT EXISTS idx_actions_timestamp ON actions(timestamp);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createActions,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxActionsActor,
	idxActionsTarget,
	idxActionsActionObject,
	idxActionsTimestamp,
}

// actionColumns is the column list shared by every SELECT on actions.
const actionColumns = `action_id, actor_content_type, actor_object_id, verb, description,
    target_content_type, target_object_id, action_object_content_type, action_object_object_id,
    timestamp, public`

// genericColumns holds the column names a relation descriptor may name.
// Relation field names are interpolated into SQL only after this check.
var genericColumns = func() map[string]bool {
	cols := make(map[string]bool, 2*len(types.Roles))
	for _, role := range types.Roles {
		cols[role.ContentTypeField()] = true
		cols[role.ObjectIDField()] = true
	}
	return cols
}()
