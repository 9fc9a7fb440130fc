package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/actstream/pkg/apps"
)

type action struct {
	ID string `gorm:"primaryKey"`
}

type user struct {
	ID int64
}

type group struct {
	ID int64
}

func declare(t *testing.T) (act, usr, grp *apps.Model) {
	t.Helper()
	a := apps.New("actstream", "auth")
	models, err := a.Declare("actstream", action{})
	require.NoError(t, err)
	act = models[0]
	models, err = a.Declare("auth", user{}, group{})
	require.NoError(t, err)
	return act, models[0], models[1]
}

func actorOptions(queryName string) Options {
	return Options{
		ContentTypeField: "actor_content_type",
		ObjectIDField:    "actor_object_id",
		RelatedQueryName: queryName,
	}
}

func TestAttach(t *testing.T) {
	act, usr, _ := declare(t)
	tbl := NewTable()

	rel, err := tbl.Attach(act, usr, "actor_actions", actorOptions("actions_with_auth_user_as_actor"))
	require.NoError(t, err)

	assert.Same(t, usr, rel.Owner)
	assert.Same(t, act, rel.Related)
	assert.Equal(t, "actor_actions", rel.Name)
	assert.Equal(t, "actor_content_type", rel.ContentTypeField)
	assert.Equal(t, "actor_object_id", rel.ObjectIDField)
	assert.Equal(t, "actions_with_auth_user_as_actor", rel.RelatedQueryName)
	assert.Equal(t, "auth.user.actor_actions -> actstream.action(actor_content_type, actor_object_id)", rel.String())

	got, ok := tbl.Get(usr, "actor_actions")
	require.True(t, ok)
	assert.Same(t, rel, got)

	got, ok = tbl.Reverse(act, "actions_with_auth_user_as_actor")
	require.True(t, ok)
	assert.Same(t, rel, got)

	assert.Equal(t, 1, tbl.Len())
}

func TestAttach_Collisions(t *testing.T) {
	act, usr, grp := declare(t)
	tbl := NewTable()

	_, err := tbl.Attach(act, usr, "actor_actions", actorOptions("actions_with_auth_user_as_actor"))
	require.NoError(t, err)

	// Same accessor name on the same owner.
	_, err = tbl.Attach(act, usr, "actor_actions", actorOptions("other_query_name"))
	assert.ErrorIs(t, err, ErrRelationExists)

	// Same reverse name on the related model.
	_, err = tbl.Attach(act, grp, "actor_actions", actorOptions("actions_with_auth_user_as_actor"))
	assert.ErrorIs(t, err, ErrRelationExists)

	// Same accessor on a different owner is fine.
	_, err = tbl.Attach(act, grp, "actor_actions", actorOptions("actions_with_auth_group_as_actor"))
	assert.NoError(t, err)

	assert.Equal(t, 2, tbl.Len())
}

func TestAttach_Invalid(t *testing.T) {
	act, usr, _ := declare(t)
	tbl := NewTable()

	tests := []struct {
		name     string
		related  *apps.Model
		owner    *apps.Model
		accessor string
		opts     Options
	}{
		{name: "nil owner", related: act, accessor: "actor_actions", opts: actorOptions("q")},
		{name: "nil related", owner: usr, accessor: "actor_actions", opts: actorOptions("q")},
		{name: "empty name", related: act, owner: usr, opts: actorOptions("q")},
		{name: "empty query name", related: act, owner: usr, accessor: "actor_actions", opts: actorOptions("")},
		{name: "empty columns", related: act, owner: usr, accessor: "actor_actions", opts: Options{RelatedQueryName: "q"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tbl.Attach(tt.related, tt.owner, tt.accessor, tt.opts)
			assert.ErrorIs(t, err, ErrInvalidRelation)
		})
	}
	assert.Equal(t, 0, tbl.Len())
}

func TestForOwner(t *testing.T) {
	act, usr, grp := declare(t)
	tbl := NewTable()

	for _, role := range []string{"target", "actor", "action_object"} {
		_, err := tbl.Attach(act, usr, role+"_actions", Options{
			ContentTypeField: role + "_content_type",
			ObjectIDField:    role + "_object_id",
			RelatedQueryName: "actions_with_auth_user_as_" + role,
		})
		require.NoError(t, err)
	}

	rels := tbl.ForOwner(usr)
	require.Len(t, rels, 3)
	assert.Equal(t, "action_object_actions", rels[0].Name)
	assert.Equal(t, "actor_actions", rels[1].Name)
	assert.Equal(t, "target_actions", rels[2].Name)

	assert.Empty(t, tbl.ForOwner(grp))

	_, ok := tbl.Get(grp, "actor_actions")
	assert.False(t, ok)
}

func TestRelationOptions(t *testing.T) {
	act, usr, _ := declare(t)
	opts := actorOptions("actions_with_auth_user_as_actor")

	rel, err := NewTable().Attach(act, usr, "actor_actions", opts)
	require.NoError(t, err)
	assert.Equal(t, opts, rel.Options())
}
