package message

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemStore_MarkReadRefreshesReadAt(t *testing.T) {
	req := require.New(t)
	s := NewMemStore()
	ctx := context.Background()

	msg, err := s.Create(ctx, "alice", "bob", "Hi", "", nil)
	req.NoError(err)
	req.Equal("text", msg.Type, "empty type defaults to text")
	req.False(msg.Read)

	first := time.Now().UTC()
	req.NoError(s.MarkRead(ctx, msg.ID, first))

	got, err := s.GetByID(ctx, msg.ID)
	req.NoError(err)
	req.True(got.Read)
	req.Equal(first, *got.ReadAt)

	// repeated read: readAt refreshed, read stays true
	second := first.Add(time.Minute)
	req.NoError(s.MarkRead(ctx, msg.ID, second))
	got, err = s.GetByID(ctx, msg.ID)
	req.NoError(err)
	req.True(got.Read)
	req.Equal(second, *got.ReadAt)

	req.ErrorIs(s.MarkRead(ctx, "missing", first), ErrNotFound)
	_, err = s.GetByID(ctx, "missing")
	req.ErrorIs(err, ErrNotFound)
}
