package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ok, err := m.Contains(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)

	at := time.Unix(100, 0)
	require.NoError(t, m.Set(ctx, 1, at))
	got, ok, err := m.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, at, got)

	require.NoError(t, m.Remove(ctx, 1))
	require.NoError(t, m.Remove(ctx, 1))
	ok, _ = m.Contains(ctx, 1)
	require.False(t, ok)
}
