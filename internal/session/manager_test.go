package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_OneSessionPerView(t *testing.T) {
	m := NewManager(nil)
	factory := func() *Controller { return newController(newMemStore(), clockAt(10, 0), today) }

	first, created := m.Open("emp-1", "2026-10-20", factory)
	assert.True(t, created)
	assert.NotEmpty(t, first.ID)

	again, created := m.Open("emp-1", "2026-10-20", factory)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	other, created := m.Open("emp-1", "2026-10-21", factory)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Equal(t, 2, m.Len())

	got, err := m.Get(first.ID)
	require.NoError(t, err)
	assert.Same(t, first, got)

	m.Close(first.ID)
	_, err = m.Get(first.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	m.Close(first.ID)
	assert.Equal(t, 1, m.Len())
}

func TestManager_Move(t *testing.T) {
	m := NewManager(nil)
	factory := func() *Controller { return newController(newMemStore(), clockAt(10, 0), today) }

	a, _ := m.Open("emp-1", "2026-10-20", factory)
	b, _ := m.Open("emp-1", "2026-10-21", factory)

	assert.ErrorIs(t, m.Move(a.ID, "2026-10-21", nil), ErrSessionExists)
	applied := 0
	require.NoError(t, m.Move(a.ID, "2026-10-22", func(c *Controller) {
		applied++
		assert.Same(t, a.Controller, c)
	}))
	assert.Equal(t, 1, applied)
	assert.Equal(t, "2026-10-22", a.DateKey())

	// The old view is free again.
	c, created := m.Open("emp-1", "2026-10-20", factory)
	assert.True(t, created)
	assert.NotEqual(t, a.ID, c.ID)
	assert.NotEqual(t, b.ID, c.ID)

	assert.ErrorIs(t, m.Move("missing", "2026-10-23", nil), ErrSessionNotFound)
}

func TestManager_Prune(t *testing.T) {
	now := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	m := NewManager(func() time.Time { return now })
	factory := func() *Controller { return newController(newMemStore(), clockAt(10, 0), today) }

	stale, _ := m.Open("emp-1", "2026-10-20", factory)
	now = now.Add(20 * time.Minute)
	fresh, _ := m.Open("emp-2", "2026-10-20", factory)
	now = now.Add(20 * time.Minute)

	assert.Equal(t, 1, m.Prune(30*time.Minute))
	_, err := m.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
}
