package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/actstream/pkg/apps"
	"github.com/mesh-intelligence/actstream/pkg/registry"
	"github.com/mesh-intelligence/actstream/pkg/relations"
	"github.com/mesh-intelligence/actstream/pkg/sqlite"
	"github.com/mesh-intelligence/actstream/pkg/stream"
	"github.com/mesh-intelligence/actstream/pkg/types"
)

type Member struct {
	ID int64
}

func TestNewStore_WithStream(t *testing.T) {
	ctx := context.Background()

	store := sqlite.NewStore()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	defer store.Detach()

	a := apps.New("actstream", "club")
	_, err := a.Declare("actstream", types.Action{})
	require.NoError(t, err)
	_, err = a.Declare("club", Member{})
	require.NoError(t, err)

	reg := registry.New(a, relations.NewTable())
	require.NoError(t, reg.Register(registry.Named("club.member")))

	s := stream.New(reg, a, store)
	sent, err := s.Send(ctx, Member{ID: 4}, "joined")
	require.NoError(t, err)

	got, err := store.GetAction(ctx, sent.ActionID)
	require.NoError(t, err)
	assert.Equal(t, "club.member", got.ActorContentType)
	assert.Equal(t, "4", got.ActorObjectID)

	require.NoError(t, store.Detach())
	_, err = store.AllActions(ctx)
	assert.ErrorIs(t, err, types.ErrBackendDetached)
}
