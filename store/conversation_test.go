package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConversations(t *testing.T) ConversationStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewConversationStore(client, "conv")
}

func TestAwaitingRoundtrip(t *testing.T) {
	cs := newTestConversations(t)
	ctx := context.Background()

	action, err := cs.Awaiting(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, AwaitingNothing, action)

	require.NoError(t, cs.SetAwaiting(ctx, 100, AwaitingDelete))
	action, err = cs.Awaiting(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, AwaitingDelete, action)

	// flags are per chat
	action, err = cs.Awaiting(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, AwaitingNothing, action)
}

func TestClearAwaitingReportsWhatWasArmed(t *testing.T) {
	cs := newTestConversations(t)
	ctx := context.Background()

	cleared, err := cs.ClearAwaiting(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, AwaitingNothing, cleared)

	require.NoError(t, cs.SetAwaiting(ctx, 200, AwaitingRestart))
	cleared, err = cs.ClearAwaiting(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, AwaitingRestart, cleared)

	action, err := cs.Awaiting(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, AwaitingNothing, action)
}

func TestSetAwaitingOverwrites(t *testing.T) {
	cs := newTestConversations(t)
	ctx := context.Background()

	require.NoError(t, cs.SetAwaiting(ctx, 300, AwaitingDelete))
	require.NoError(t, cs.SetAwaiting(ctx, 300, AwaitingRestart))

	action, err := cs.Awaiting(ctx, 300)
	require.NoError(t, err)
	assert.Equal(t, AwaitingRestart, action)
}

func TestUserCacheRoundtrip(t *testing.T) {
	cs := newTestConversations(t)
	ctx := context.Background()

	cached, err := cs.User(ctx, 400)
	require.NoError(t, err)
	assert.Nil(t, cached)

	want := CachedUser{UserID: 7, DefaultPlaylistID: 9, DisplayName: "alice"}
	require.NoError(t, cs.SaveUser(ctx, 400, want))

	cached, err = cs.User(ctx, 400)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, want, *cached)
}
