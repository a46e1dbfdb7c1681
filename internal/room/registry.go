// Room registry: owns every live room and the connection-to-room index.
//
// All mutations run under one mutex, including the broadcasts they trigger
// and the round-timer callbacks, so each operation observes and leaves a
// consistent registry. Sends are non-blocking enqueues on the transport
// side, so holding the lock across fan-out is cheap.
package room

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"wordduel/internal/protocol"
	"wordduel/internal/words"
)

type Registry struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	playerRooms map[string]string // conn ID -> room code

	// test seams; defaults set in NewRegistry
	roundDuration time.Duration
	pickWord      func() string
	now           func() time.Time
}

// NewRegistry returns an empty registry. words.Init must have run before
// the first game starts.
func NewRegistry() *Registry {
	return &Registry{
		rooms:         make(map[string]*Room),
		playerRooms:   make(map[string]string),
		roundDuration: roundDuration,
		pickWord:      words.Random,
		now:           time.Now,
	}
}

// JoinInfo is the roster snapshot returned to a successful joiner.
type JoinInfo struct {
	Code    string
	Players []string
}

// CreateRoom makes a new lobby with conn as sole member and host. A
// connection already in a room is moved out of it first, preserving the
// one-room-per-connection invariant.
func (reg *Registry) CreateRoom(conn Conn, playerName string) string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.leaveLocked(conn.ID())

	code := generateCode(reg.rooms)
	now := reg.now()
	r := &Room{
		Code:         code,
		CreatedAt:    now,
		LastActivity: now,
		HostID:       conn.ID(),
		State:        StateLobby,
		players:      make(map[string]*Player),
	}
	r.addPlayer(&Player{Name: playerName, Conn: conn})

	reg.rooms[code] = r
	reg.playerRooms[conn.ID()] = code

	log.Info().Str("code", code).Str("player", playerName).Msg("room created")
	return code
}

// JoinRoom adds conn to the room identified by code. Lookup is
// case-insensitive; codes are stored uppercase. Remaining members get a
// player_joined broadcast; the roster is returned for the joiner's
// room_joined event.
func (reg *Registry) JoinRoom(conn Conn, code, playerName string) (JoinInfo, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[strings.ToUpper(code)]
	if !ok {
		return JoinInfo{}, ErrRoomNotFound
	}
	if r.State != StateLobby {
		return JoinInfo{}, ErrGameInProgress
	}

	// Re-joining the current room is a no-op; leaving first here would
	// delete a single-member room out from under the joiner.
	if reg.playerRooms[conn.ID()] == r.Code {
		return JoinInfo{Code: r.Code, Players: r.playerNames()}, nil
	}
	reg.leaveLocked(conn.ID())

	r.addPlayer(&Player{Name: playerName, Conn: conn})
	reg.playerRooms[conn.ID()] = r.Code
	r.LastActivity = reg.now()

	reg.broadcastLocked(r, protocol.NewPlayerJoined(playerName), conn.ID())

	log.Info().Str("code", r.Code).Str("player", playerName).Int("players", r.size()).Msg("player joined")
	return JoinInfo{Code: r.Code, Players: r.playerNames()}, nil
}

// LeaveRoom removes conn from its room, if any. Survivors get a player_left
// broadcast; an emptied room is deleted. Reports the departed player's name.
func (reg *Registry) LeaveRoom(conn Conn) (string, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.leaveLocked(conn.ID())
}

func (reg *Registry) leaveLocked(connID string) (string, bool) {
	code, ok := reg.playerRooms[connID]
	if !ok {
		return "", false
	}
	delete(reg.playerRooms, connID)

	r, ok := reg.rooms[code]
	if !ok {
		return "", false
	}
	p := r.removePlayer(connID)
	if p == nil {
		return "", false
	}

	if r.size() == 0 {
		reg.deleteLocked(code)
		log.Info().Str("code", code).Str("player", p.Name).Msg("last player left, room deleted")
		return p.Name, true
	}

	r.LastActivity = reg.now()
	if r.HostID == connID {
		r.HostID = r.order[0]
		log.Info().Str("code", code).Str("host", r.players[r.HostID].Name).Msg("host transferred")
	}
	reg.broadcastLocked(r, protocol.NewPlayerLeft(p.Name), "")
	return p.Name, true
}

// StartGame moves a lobby into play: broadcasts game_started, then hands the
// room to the round engine.
func (reg *Registry) StartGame(code string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if len(code) != codeLength {
		return ErrInvalidRoomCode
	}
	r, ok := reg.rooms[strings.ToUpper(code)]
	if !ok {
		return ErrRoomNotFound
	}
	if r.State != StateLobby {
		return ErrGameInProgress
	}

	r.LastActivity = reg.now()
	reg.broadcastLocked(r, protocol.NewGameStarted(), "")
	reg.initializeGame(r)
	return nil
}

// DeleteRoom removes a room outright: cancels its round timer, detaches all
// members, drops it from the registry. Reports whether the room existed.
// Members are not notified; callers broadcast first when they need to.
func (reg *Registry) DeleteRoom(code string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.deleteLocked(strings.ToUpper(code))
}

func (reg *Registry) deleteLocked(code string) bool {
	r, ok := reg.rooms[code]
	if !ok {
		return false
	}
	if r.Game != nil {
		r.Game.stopTimer()
		r.Game = nil
	}
	for id := range r.players {
		delete(reg.playerRooms, id)
	}
	delete(reg.rooms, code)
	return true
}

// Stats reports live room and tracked player counts.
func (reg *Registry) Stats() (activeRooms, totalPlayers int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms), len(reg.playerRooms)
}

// Snapshot returns a read-only view of one room for inspection endpoints.
func (reg *Registry) Snapshot(code string) (RoomInfo, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[strings.ToUpper(code)]
	if !ok {
		return RoomInfo{}, false
	}
	info := RoomInfo{
		Code:      r.Code,
		State:     r.State,
		Players:   r.playerNames(),
		CreatedAt: r.CreatedAt,
	}
	if host := r.player(r.HostID); host != nil {
		info.Host = host.Name
	}
	if r.Game != nil {
		info.Round = r.Game.CurrentRound
	}
	return info, true
}

// RoomInfo is the inspection view exposed over HTTP. It never includes the
// target word.
type RoomInfo struct {
	Code      string    `json:"code"`
	State     State     `json:"state"`
	Host      string    `json:"host"`
	Players   []string  `json:"players"`
	Round     int       `json:"round,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reset tears down every room and timer. Test and shutdown hook.
func (reg *Registry) Reset() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for code := range reg.rooms {
		reg.deleteLocked(code)
	}
}

// broadcastLocked serializes msg once and enqueues it to every member except
// excludeID. Callers hold the registry mutex.
func (reg *Registry) broadcastLocked(r *Room, msg any, excludeID string) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("code", r.Code).Msg("broadcast marshal failed")
		return
	}
	for _, id := range r.order {
		if id == excludeID {
			continue
		}
		if err := r.players[id].Conn.Send(data); err != nil {
			log.Warn().Err(err).Str("code", r.Code).Str("conn", id).Msg("broadcast send failed")
		}
	}
}

func send(conn Conn, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("unicast marshal failed")
		return
	}
	if err := conn.Send(data); err != nil {
		log.Warn().Err(err).Str("conn", conn.ID()).Msg("unicast send failed")
	}
}
