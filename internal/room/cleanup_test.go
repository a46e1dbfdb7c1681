package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepKeepsActiveRooms(t *testing.T) {
	reg := newTestRegistry("WORDS")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	reg.now = func() time.Time { return now }

	fillRoom(t, reg, 2)

	now = base.Add(29 * time.Minute)
	assert.Zero(t, reg.sweep())
	rooms, _ := reg.Stats()
	assert.Equal(t, 1, rooms)
}

func TestSweepClosesStaleOccupiedRoom(t *testing.T) {
	reg := newTestRegistry("WORDS")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	reg.now = func() time.Time { return now }

	_, conns := fillRoom(t, reg, 2)

	now = base.Add(31 * time.Minute)
	assert.Equal(t, 1, reg.sweep())

	rooms, players := reg.Stats()
	assert.Zero(t, rooms)
	assert.Zero(t, players)

	for _, c := range conns {
		assert.Contains(t, c.eventTypes(t), "error")
		assert.True(t, c.closed)
		assert.Equal(t, 1000, c.closeCode)
		assert.Equal(t, inactiveCloseReason, c.closeReason)
	}
}

func TestSweepDeletesEmptyRoomSooner(t *testing.T) {
	reg := newTestRegistry("WORDS")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	reg.now = func() time.Time { return now }

	// an empty room cannot arise through the public API; construct one the
	// way a half-torn-down room would look.
	code := generateCode(reg.rooms)
	reg.rooms[code] = &Room{
		Code:         code,
		CreatedAt:    now,
		LastActivity: now,
		State:        StateLobby,
		players:      make(map[string]*Player),
	}

	now = base.Add(4 * time.Minute)
	assert.Zero(t, reg.sweep())

	now = base.Add(6 * time.Minute)
	assert.Equal(t, 1, reg.sweep())
	rooms, _ := reg.Stats()
	assert.Zero(t, rooms)
}

func TestSweeperStartStop(t *testing.T) {
	reg := newTestRegistry("WORDS")
	s := NewSweeper(reg)
	s.interval = 10 * time.Millisecond

	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	// stopping twice would panic on the closed channel; Stop is one-shot by
	// contract, so just verify the loop exited.
	select {
	case <-s.done:
	default:
		t.Fatal("sweeper loop still running after Stop")
	}
	require.NotPanics(t, func() { reg.sweep() })
}
