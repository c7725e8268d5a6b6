package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minichat/internal/auth"
)

func TestMemoryStore_SaveGet(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	in := auth.Session{Name: "alice", Role: auth.RoleAdmin, Color: auth.AdminColor}
	require.NoError(t, store.Save(ctx, "sid-1", in))

	out, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sid-1", auth.Session{Name: "alice"}))
	require.NoError(t, store.Delete(ctx, "sid-1"))

	_, err := store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sid-1", auth.Session{Name: "alice"}))
	time.Sleep(20 * time.Millisecond)

	_, err := store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Overwrite(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sid-1", auth.Session{Name: "alice", Role: auth.RoleMember}))
	require.NoError(t, store.Save(ctx, "sid-1", auth.Session{Name: "alice", Role: auth.RoleAdmin}))

	out, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, out.Role)
}
