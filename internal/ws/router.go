// Message router: parses inbound frames against the closed intent set,
// dispatches to the registry, and maps every failure to a stable
// human-readable error event sent only to the offending connection.
package ws

import (
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"wordduel/internal/game"
	"wordduel/internal/protocol"
	"wordduel/internal/room"
)

const (
	minNameLen = 1
	maxNameLen = 20
	codeLen    = 5
)

type Router struct {
	reg *room.Registry
}

func NewRouter(reg *room.Registry) *Router {
	return &Router{reg: reg}
}

// HandleMessage processes one inbound frame end to end. Nothing here is
// fatal: the connection stays usable after any error.
func (rt *Router) HandleMessage(conn room.Conn, data []byte) {
	msg, err := parse(data)
	if err != nil {
		rt.sendError(conn, err)
		return
	}

	switch msg.Type {
	case protocol.IntentCreateRoom:
		code := rt.reg.CreateRoom(conn, msg.PlayerName)
		rt.send(conn, protocol.NewRoomCreated(code))

	case protocol.IntentJoinRoom:
		info, err := rt.reg.JoinRoom(conn, msg.Code, msg.PlayerName)
		if err != nil {
			rt.sendError(conn, err)
			return
		}
		rt.send(conn, protocol.NewRoomJoined(info.Code, info.Players))

	case protocol.IntentLeaveRoom:
		rt.reg.LeaveRoom(conn)

	case protocol.IntentStartGame:
		if err := rt.reg.StartGame(msg.Room); err != nil {
			rt.sendError(conn, err)
		}

	case protocol.IntentSubmitAnswer:
		if err := rt.reg.SubmitAnswer(conn, msg.Answer); err != nil {
			rt.sendError(conn, err)
		}
	}
}

// HandleClose treats a dropped connection exactly like an explicit leave.
func (rt *Router) HandleClose(conn room.Conn) {
	if name, ok := rt.reg.LeaveRoom(conn); ok {
		log.Debug().Str("conn", conn.ID()).Str("player", name).Msg("connection closed, left room")
	}
}

// parse validates a frame against the intent schemas. Anything malformed
// collapses into ErrInvalidMessage; the registry and engine re-validate the
// semantic parts themselves.
func parse(data []byte) (protocol.ClientMessage, error) {
	var msg protocol.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, room.ErrInvalidMessage
	}

	switch msg.Type {
	case protocol.IntentCreateRoom:
		if !validName(msg.PlayerName) {
			return msg, room.ErrInvalidMessage
		}
	case protocol.IntentJoinRoom:
		if !validName(msg.PlayerName) || len(msg.Code) != codeLen {
			return msg, room.ErrInvalidMessage
		}
	case protocol.IntentLeaveRoom:
	case protocol.IntentStartGame:
		if msg.Room == "" {
			return msg, room.ErrInvalidMessage
		}
	case protocol.IntentSubmitAnswer:
		if len(msg.Answer) != game.WordLength {
			return msg, room.ErrInvalidMessage
		}
	default:
		return msg, room.ErrInvalidMessage
	}
	return msg, nil
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= minNameLen && n <= maxNameLen
}

// errorMessage maps core errors to the stable strings clients display.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrGameInProgress):
		return "Game already in progress"
	case errors.Is(err, room.ErrInvalidMessage):
		return "Invalid message format"
	case errors.Is(err, room.ErrInvalidRoomCode):
		return "Invalid room code"
	case errors.Is(err, room.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, room.ErrGameNotStarted):
		return "Game has not started"
	case errors.Is(err, room.ErrNotYourTurn):
		return "You are not in this game"
	case errors.Is(err, room.ErrInvalidAnswer):
		return "Answer must be five letters"
	case errors.Is(err, room.ErrAlreadySubmitted):
		return "You already submitted this round"
	case errors.Is(err, room.ErrRoundEnded):
		return "Round already ended"
	default:
		return "Something went wrong"
	}
}

func (rt *Router) sendError(conn room.Conn, err error) {
	rt.send(conn, protocol.NewError(errorMessage(err)))
}

func (rt *Router) send(conn room.Conn, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("marshal outbound message")
		return
	}
	if err := conn.Send(data); err != nil {
		log.Debug().Err(err).Str("conn", conn.ID()).Msg("send failed")
	}
}
