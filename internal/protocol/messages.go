// Wire message types exchanged with clients.
//
// Every frame is a flat JSON object with a "type" discriminator. Inbound
// intents form a closed set; anything else is an invalid message. Outbound
// events are built through the New* constructors so the type tag can never
// drift from the payload shape.
package protocol

import "wordduel/internal/game"

// Inbound intent types.
const (
	IntentCreateRoom   = "create_room"
	IntentJoinRoom     = "join_room"
	IntentLeaveRoom    = "leave_room"
	IntentStartGame    = "start_game"
	IntentSubmitAnswer = "submit_answer"
)

// ClientMessage is the superset envelope for all inbound intents. Which
// fields are required depends on Type; the router validates per intent.
type ClientMessage struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName,omitempty"`
	Code       string `json:"code,omitempty"`
	Room       string `json:"room,omitempty"`
	Answer     string `json:"answer,omitempty"`
}

type RoomCreated struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

func NewRoomCreated(code string) RoomCreated {
	return RoomCreated{Type: "room_created", Code: code}
}

type RoomJoined struct {
	Type    string   `json:"type"`
	Code    string   `json:"code"`
	Players []string `json:"players"`
}

func NewRoomJoined(code string, players []string) RoomJoined {
	return RoomJoined{Type: "room_joined", Code: code, Players: players}
}

type PlayerJoined struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName"`
}

func NewPlayerJoined(name string) PlayerJoined {
	return PlayerJoined{Type: "player_joined", PlayerName: name}
}

type PlayerLeft struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName"`
}

func NewPlayerLeft(name string) PlayerLeft {
	return PlayerLeft{Type: "player_left", PlayerName: name}
}

type GameStarted struct {
	Type string `json:"type"`
}

func NewGameStarted() GameStarted {
	return GameStarted{Type: "game_started"}
}

type RoundStarted struct {
	Type          string `json:"type"`
	Round         int    `json:"round"`
	TimeRemaining int    `json:"timeRemaining"`
}

func NewRoundStarted(round, timeRemaining int) RoundStarted {
	return RoundStarted{Type: "round_started", Round: round, TimeRemaining: timeRemaining}
}

// AnswerResult is unicast to the submitter only; it is the one event that
// reveals per-letter verdicts together with correctness.
type AnswerResult struct {
	Type      string         `json:"type"`
	IsCorrect bool           `json:"isCorrect"`
	Result    []game.Verdict `json:"result"`
}

func NewAnswerResult(isCorrect bool, result []game.Verdict) AnswerResult {
	return AnswerResult{Type: "answer_result", IsCorrect: isCorrect, Result: result}
}

// PlayerSubmitted carries the verdicts but never the guessed word.
type PlayerSubmitted struct {
	Type       string         `json:"type"`
	PlayerName string         `json:"playerName"`
	Submission []game.Verdict `json:"submission"`
}

func NewPlayerSubmitted(name string, submission []game.Verdict) PlayerSubmitted {
	return PlayerSubmitted{Type: "player_submitted", PlayerName: name, Submission: submission}
}

type PlayerWon struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName"`
	Word       string `json:"word"`
}

func NewPlayerWon(name, word string) PlayerWon {
	return PlayerWon{Type: "player_won", PlayerName: name, Word: word}
}

type RoundEnded struct {
	Type   string  `json:"type"`
	Round  int     `json:"round"`
	Winner *string `json:"winner"`
}

func NewRoundEnded(round int, winner *string) RoundEnded {
	return RoundEnded{Type: "round_ended", Round: round, Winner: winner}
}

type GameEnded struct {
	Type        string         `json:"type"`
	CorrectWord string         `json:"correctWord"`
	Scores      map[string]int `json:"scores"`
	Winner      *string        `json:"winner"`
}

func NewGameEnded(correctWord string, scores map[string]int, winner *string) GameEnded {
	return GameEnded{Type: "game_ended", CorrectWord: correctWord, Scores: scores, Winner: winner}
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: message}
}
