package registry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/wallet-auth/internal/model"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	id, err := r.Register(ctx, "02aa", "0xabc", model.RoleClient)
	require.NoError(t, err)
	_, err = uuid.Parse(id.UserID)
	assert.NoError(t, err)
	assert.Equal(t, "0xabc", id.Address)
	assert.False(t, id.CreatedAt.IsZero())

	got, err := r.Lookup(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	first, err := r.Register(ctx, "02aa", "0xabc", model.RoleClient)
	require.NoError(t, err)

	_, err = r.Register(ctx, "02bb", "0xabc", model.RoleAdmin)
	assert.ErrorIs(t, err, model.ErrConflict)

	got, err := r.Lookup(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, got.UserID, "conflicting registration must not overwrite")
	assert.Equal(t, model.RoleClient, got.Role)
}

func TestLookupUnknown(t *testing.T) {
	_, err := NewMemoryRegistry().Lookup(context.Background(), "0xnope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
