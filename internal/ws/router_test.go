package ws

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordduel/internal/room"
	"wordduel/internal/words"
)

type fakeConn struct {
	id     string
	frames [][]byte
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(payload []byte) error {
	c.frames = append(c.frames, payload)
	return nil
}

func (c *fakeConn) Close(code int, reason string) error { return nil }

func (c *fakeConn) last(t *testing.T) map[string]any {
	t.Helper()
	require.NotEmpty(t, c.frames)
	var ev map[string]any
	require.NoError(t, json.Unmarshal(c.frames[len(c.frames)-1], &ev))
	return ev
}

func (c *fakeConn) types(t *testing.T) []string {
	t.Helper()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		var ev struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev.Type)
	}
	return out
}

func newTestRouter() *Router {
	return NewRouter(room.NewRegistry())
}

func TestMalformedFrames(t *testing.T) {
	rt := newTestRouter()
	conn := &fakeConn{id: "c1"}

	frames := []string{
		`not json`,
		`{}`,
		`{"type":"no_such_intent"}`,
		`{"type":"create_room"}`,
		`{"type":"create_room","playerName":""}`,
		`{"type":"create_room","playerName":"` + strings.Repeat("x", 21) + `"}`,
		`{"type":"join_room","playerName":"bob"}`,
		`{"type":"join_room","playerName":"bob","code":"ABC"}`,
		`{"type":"start_game"}`,
		`{"type":"submit_answer","answer":"toolong"}`,
		`{"type":"submit_answer","answer":"hi"}`,
	}
	for _, f := range frames {
		rt.HandleMessage(conn, []byte(f))
		ev := conn.last(t)
		assert.Equalf(t, "error", ev["type"], "frame: %s", f)
		assert.Equalf(t, "Invalid message format", ev["message"], "frame: %s", f)
	}
}

func TestCreateRoomFlow(t *testing.T) {
	rt := newTestRouter()
	conn := &fakeConn{id: "c1"}

	rt.HandleMessage(conn, []byte(`{"type":"create_room","playerName":"alice"}`))
	ev := conn.last(t)
	assert.Equal(t, "room_created", ev["type"])
	assert.Len(t, ev["code"], 5)
}

func TestJoinRoomFlow(t *testing.T) {
	rt := newTestRouter()
	host := &fakeConn{id: "c1"}
	joiner := &fakeConn{id: "c2"}

	rt.HandleMessage(host, []byte(`{"type":"create_room","playerName":"alice"}`))
	code := host.last(t)["code"].(string)

	rt.HandleMessage(joiner, []byte(`{"type":"join_room","code":"`+code+`","playerName":"bob"}`))
	ev := joiner.last(t)
	assert.Equal(t, "room_joined", ev["type"])
	assert.Equal(t, []any{"alice", "bob"}, ev["players"])

	hostEv := host.last(t)
	assert.Equal(t, "player_joined", hostEv["type"])
	assert.Equal(t, "bob", hostEv["playerName"])
}

func TestJoinUnknownRoom(t *testing.T) {
	rt := newTestRouter()
	conn := &fakeConn{id: "c1"}

	rt.HandleMessage(conn, []byte(`{"type":"join_room","code":"ZZZZZ","playerName":"bob"}`))
	ev := conn.last(t)
	assert.Equal(t, "error", ev["type"])
	assert.Equal(t, "Room not found", ev["message"])
}

func TestSubmitBeforeStartMapsError(t *testing.T) {
	rt := newTestRouter()
	conn := &fakeConn{id: "c1"}

	rt.HandleMessage(conn, []byte(`{"type":"create_room","playerName":"alice"}`))
	rt.HandleMessage(conn, []byte(`{"type":"submit_answer","answer":"hello"}`))

	ev := conn.last(t)
	assert.Equal(t, "error", ev["type"])
	assert.Equal(t, "Game has not started", ev["message"])
}

func TestStartAndSubmitFlow(t *testing.T) {
	require.NoError(t, words.Init())

	rt := newTestRouter()
	host := &fakeConn{id: "c1"}
	joiner := &fakeConn{id: "c2"}

	rt.HandleMessage(host, []byte(`{"type":"create_room","playerName":"alice"}`))
	code := host.last(t)["code"].(string)
	rt.HandleMessage(joiner, []byte(`{"type":"join_room","code":"`+code+`","playerName":"bob"}`))

	rt.HandleMessage(host, []byte(`{"type":"start_game","room":"`+code+`"}`))
	assert.Contains(t, host.types(t), "game_started")
	assert.Contains(t, joiner.types(t), "round_started")

	rt.HandleMessage(host, []byte(`{"type":"submit_answer","answer":"hello"}`))
	assert.Contains(t, host.types(t), "answer_result")
	assert.Contains(t, joiner.types(t), "player_submitted")
}

func TestStartGameErrors(t *testing.T) {
	rt := newTestRouter()
	conn := &fakeConn{id: "c1"}

	rt.HandleMessage(conn, []byte(`{"type":"start_game","room":"ABC"}`))
	assert.Equal(t, "Invalid room code", conn.last(t)["message"])

	rt.HandleMessage(conn, []byte(`{"type":"start_game","room":"ZZZZZ"}`))
	assert.Equal(t, "Room not found", conn.last(t)["message"])
}

func TestLeaveRoomIntent(t *testing.T) {
	rt := newTestRouter()
	host := &fakeConn{id: "c1"}
	joiner := &fakeConn{id: "c2"}

	rt.HandleMessage(host, []byte(`{"type":"create_room","playerName":"alice"}`))
	code := host.last(t)["code"].(string)
	rt.HandleMessage(joiner, []byte(`{"type":"join_room","code":"`+code+`","playerName":"bob"}`))

	rt.HandleMessage(joiner, []byte(`{"type":"leave_room"}`))
	ev := host.last(t)
	assert.Equal(t, "player_left", ev["type"])
	assert.Equal(t, "bob", ev["playerName"])
}

func TestCloseActsAsLeave(t *testing.T) {
	rt := newTestRouter()
	host := &fakeConn{id: "c1"}
	joiner := &fakeConn{id: "c2"}

	rt.HandleMessage(host, []byte(`{"type":"create_room","playerName":"alice"}`))
	code := host.last(t)["code"].(string)
	rt.HandleMessage(joiner, []byte(`{"type":"join_room","code":"`+code+`","playerName":"bob"}`))

	rt.HandleClose(joiner)
	ev := host.last(t)
	assert.Equal(t, "player_left", ev["type"])
	assert.Equal(t, "bob", ev["playerName"])
}

func TestErrorsNeverBroadcast(t *testing.T) {
	rt := newTestRouter()
	host := &fakeConn{id: "c1"}
	joiner := &fakeConn{id: "c2"}

	rt.HandleMessage(host, []byte(`{"type":"create_room","playerName":"alice"}`))
	code := host.last(t)["code"].(string)
	rt.HandleMessage(joiner, []byte(`{"type":"join_room","code":"`+code+`","playerName":"bob"}`))

	hostFrames := len(host.frames)
	rt.HandleMessage(joiner, []byte(`garbage`))
	assert.Equal(t, "error", joiner.last(t)["type"])
	assert.Equal(t, hostFrames, len(host.frames), "errors go only to the offender")
}
