package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*MemoryIdempotencyStore, *time.Time) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryIdempotencyStore()
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMemoryStore_CicloCompleto(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	ok, err := s.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	e, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.True(t, e.Pending)

	ok, err = s.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "una clave en curso no se reserva dos veces")

	require.NoError(t, s.Complete(ctx, "k1", StoredResponse{Status: 201, ContentType: "application/json", Body: []byte(`{"ok":true}`)}, time.Hour))

	e, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, e.Response)
	assert.False(t, e.Pending)
	assert.Equal(t, 201, e.Response.Status)
	assert.JSONEq(t, `{"ok":true}`, string(e.Response.Body))

	ok, err = s.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ReleasePermiteReintento(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, _ = s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, s.Release(ctx, "k"))

	e, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, e)

	ok, err := s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_CompleteSinReserva(t *testing.T) {
	s, _ := newTestStore()
	err := s.Complete(context.Background(), "nada", StoredResponse{Status: 200}, time.Minute)
	assert.ErrorIs(t, err, ErrNotReserved)
}

func TestMemoryStore_Vencimiento(t *testing.T) {
	s, now := newTestStore()
	ctx := context.Background()

	_, _ = s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, s.Complete(ctx, "k", StoredResponse{Status: 200}, time.Minute))

	*now = now.Add(2 * time.Minute)
	e, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, e)

	ok, err := s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_BodyNoCompartido(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	body := []byte("abc")

	_, _ = s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, s.Complete(ctx, "k", StoredResponse{Status: 200, Body: body}, time.Minute))
	body[0] = 'x'

	e, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(e.Response.Body))
}
