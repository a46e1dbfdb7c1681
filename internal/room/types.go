package room

import (
	"errors"
	"time"

	"wordduel/internal/game"
)

// Conn is the transport-side handle for one connected client. Implementations
// must give every connection a stable ID for the lifetime of the session;
// the registry uses it as the membership key.
type Conn interface {
	ID() string
	Send(payload []byte) error
	Close(code int, reason string) error
}

// State is the lifecycle phase of a room.
type State string

const (
	StateLobby    State = "lobby"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// Player is one member of a room. Names are 1-20 characters and not
// required to be unique within a room.
type Player struct {
	Name string
	Conn Conn
}

// Room is one game session. All fields are guarded by the owning
// registry's mutex; nothing outside this package touches them directly.
type Room struct {
	Code         string
	CreatedAt    time.Time
	LastActivity time.Time
	HostID       string
	State        State
	Game         *GameState

	players map[string]*Player
	order   []string // conn IDs in join order
}

// GameState exists for exactly the span a room is playing. The round timer
// is owned here: arming replaces and cancels any previous one, and room
// deletion always cancels it.
type GameState struct {
	CurrentRound   int
	MaxRounds      int
	TargetWord     string
	RoundStartedAt time.Time
	Scores         map[string]int
	Submissions    map[string][]Submission
	Winner         string // current round's winner, empty if none yet

	roundTimer *time.Timer
}

// Submission records one scored guess. Append-only per player.
type Submission struct {
	Round       int
	Word        string
	Result      []game.Verdict
	SubmittedAt time.Time
}

// Room lifecycle errors, surfaced to clients as error events.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrGameInProgress  = errors.New("game already in progress")
	ErrInvalidRoomCode = errors.New("invalid room code")
	ErrInvalidMessage  = errors.New("invalid message format")
)

// Game errors, same treatment. None of these close the connection.
var (
	ErrGameNotStarted   = errors.New("game not started")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidAnswer    = errors.New("invalid answer")
	ErrAlreadySubmitted = errors.New("already submitted this round")
	ErrRoundEnded       = errors.New("round already ended")
)

func (r *Room) addPlayer(p *Player) {
	id := p.Conn.ID()
	if _, ok := r.players[id]; !ok {
		r.order = append(r.order, id)
	}
	r.players[id] = p
}

func (r *Room) removePlayer(id string) *Player {
	p, ok := r.players[id]
	if !ok {
		return nil
	}
	delete(r.players, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p
}

func (r *Room) player(id string) *Player {
	return r.players[id]
}

func (r *Room) size() int { return len(r.players) }

// playerNames returns member names in join order.
func (r *Room) playerNames() []string {
	names := make([]string, 0, len(r.order))
	for _, id := range r.order {
		names = append(names, r.players[id].Name)
	}
	return names
}
