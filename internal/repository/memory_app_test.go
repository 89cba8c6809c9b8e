package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bjarke-xyz/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryApp_OrderWithIdenticalClock(t *testing.T) {
	repo := NewMemoryApp()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, domain.AppFields{Title: title, Description: "d", AppURL: "https://x.example"})
		require.NoError(t, err)
	}

	apps, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{apps[0].Title, apps[1].Title, apps[2].Title})
}

func TestMemoryApp_FailWith(t *testing.T) {
	repo := NewMemoryApp()
	boom := errors.New("connection refused")
	repo.FailWith(boom)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, repo.Delete(context.Background(), "x"), boom)

	repo.FailWith(nil)
	_, err = repo.List(context.Background())
	assert.NoError(t, err)
}

func TestMemoryApp_DeleteMissing(t *testing.T) {
	repo := NewMemoryApp()
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), domain.ErrNotFound)
}
