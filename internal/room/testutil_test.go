package room

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeConn records everything the core sends through it.
type fakeConn struct {
	id          string
	frames      [][]byte
	closed      bool
	closeCode   int
	closeReason string
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(payload []byte) error {
	c.frames = append(c.frames, payload)
	return nil
}

func (c *fakeConn) Close(code int, reason string) error {
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
	return nil
}

// eventTypes decodes the type discriminator of every frame sent so far.
func (c *fakeConn) eventTypes(t *testing.T) []string {
	t.Helper()
	types := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		var env struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(f, &env))
		types = append(types, env.Type)
	}
	return types
}

// lastEvent decodes the most recent frame into a generic map.
func (c *fakeConn) lastEvent(t *testing.T) map[string]any {
	t.Helper()
	require.NotEmpty(t, c.frames)
	var ev map[string]any
	require.NoError(t, json.Unmarshal(c.frames[len(c.frames)-1], &ev))
	return ev
}

// event returns the most recent frame of the given type, failing if absent.
func (c *fakeConn) event(t *testing.T, eventType string) map[string]any {
	t.Helper()
	for i := len(c.frames) - 1; i >= 0; i-- {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(c.frames[i], &ev))
		if ev["type"] == eventType {
			return ev
		}
	}
	t.Fatalf("no %s event sent to %s", eventType, c.id)
	return nil
}

// newTestRegistry returns a registry with a fixed target word and a round
// timer long enough that it never fires during a test.
func newTestRegistry(target string) *Registry {
	reg := NewRegistry()
	reg.pickWord = func() string { return target }
	reg.roundDuration = time.Hour
	return reg
}

// fillRoom creates a room with n members and returns its code plus conns in
// join order.
func fillRoom(t *testing.T, reg *Registry, n int) (string, []*fakeConn) {
	t.Helper()
	require.Greater(t, n, 0)

	conns := make([]*fakeConn, n)
	conns[0] = newFakeConn("conn-0")
	code := reg.CreateRoom(conns[0], "player-0")
	for i := 1; i < n; i++ {
		conns[i] = newFakeConn(fmt.Sprintf("conn-%d", i))
		_, err := reg.JoinRoom(conns[i], code, fmt.Sprintf("player-%d", i))
		require.NoError(t, err)
	}
	return code, conns
}
