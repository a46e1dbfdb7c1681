// Round engine: drives one room's playing lifecycle from game start to the
// game_ended broadcast. Every entry point runs under the registry mutex, and
// timer callbacks re-acquire it, so round resolution is exactly-once even
// when a timeout races the all-submitted path.
package room

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"wordduel/internal/game"
	"wordduel/internal/protocol"
)

const (
	maxRounds     = 5
	roundDuration = 60 * time.Second
)

// initializeGame transitions a lobby to playing: picks the target, seeds
// scores for the members present right now, arms the first round timer and
// announces round 1. Callers hold the registry mutex.
func (reg *Registry) initializeGame(r *Room) {
	now := reg.now()
	gs := &GameState{
		CurrentRound:   1,
		MaxRounds:      maxRounds,
		TargetWord:     reg.pickWord(),
		RoundStartedAt: now,
		Scores:         make(map[string]int, r.size()),
		Submissions:    make(map[string][]Submission),
	}
	for _, name := range r.playerNames() {
		gs.Scores[name] = 0
	}

	r.Game = gs
	r.State = StatePlaying
	reg.armRoundTimer(r)

	log.Info().Str("code", r.Code).Int("players", r.size()).Msg("game started")
	reg.broadcastLocked(r, protocol.NewRoundStarted(1, int(reg.roundDuration.Seconds())), "")
}

// SubmitAnswer validates, scores and records one guess for the submitting
// connection. The verdict goes back to the submitter as answer_result; the
// rest of the room sees player_submitted without the word. A correct guess
// wins and ends the round; otherwise the round ends once every current
// member has submitted.
func (reg *Registry) SubmitAnswer(conn Conn, rawAnswer string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, ok := reg.playerRooms[conn.ID()]
	if !ok {
		return ErrGameNotStarted
	}
	r := reg.rooms[code]
	if r == nil || r.State != StatePlaying || r.Game == nil {
		return ErrGameNotStarted
	}
	gs := r.Game

	p := r.player(conn.ID())
	if p == nil {
		return ErrNotYourTurn
	}

	for _, sub := range gs.Submissions[p.Name] {
		if sub.Round == gs.CurrentRound {
			return ErrAlreadySubmitted
		}
	}

	answer := strings.ToUpper(strings.TrimSpace(rawAnswer))
	if !game.IsValidWord(answer) {
		return ErrInvalidAnswer
	}

	isCorrect, result := game.Score(answer, gs.TargetWord)
	gs.Submissions[p.Name] = append(gs.Submissions[p.Name], Submission{
		Round:       gs.CurrentRound,
		Word:        answer,
		Result:      result,
		SubmittedAt: reg.now(),
	})
	r.LastActivity = reg.now()

	send(conn, protocol.NewAnswerResult(isCorrect, result))
	reg.broadcastLocked(r, protocol.NewPlayerSubmitted(p.Name, result), conn.ID())

	if isCorrect {
		gs.Winner = p.Name
		gs.Scores[p.Name]++
		log.Info().Str("code", r.Code).Str("player", p.Name).Int("round", gs.CurrentRound).Msg("round won")
		reg.broadcastLocked(r, protocol.NewPlayerWon(p.Name, answer), "")
		reg.endRoundLocked(r)
		return nil
	}

	if reg.allSubmitted(r) {
		reg.endRoundLocked(r)
	}
	return nil
}

// allSubmitted reports whether every current member has a submission for the
// current round. Members who joined mid-game cannot exist (joins are
// lobby-only), but members who left no longer block the round.
func (reg *Registry) allSubmitted(r *Room) bool {
	gs := r.Game
	for _, name := range r.playerNames() {
		found := false
		for _, sub := range gs.Submissions[name] {
			if sub.Round == gs.CurrentRound {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// endRoundLocked resolves the current round exactly once. A nil game means
// the round already ended through the other path; the stale timer callback
// lands here and does nothing.
func (reg *Registry) endRoundLocked(r *Room) {
	gs := r.Game
	if gs == nil {
		return
	}
	gs.stopTimer()
	r.LastActivity = reg.now()

	reg.broadcastLocked(r, protocol.NewRoundEnded(gs.CurrentRound, optional(gs.Winner)), "")

	if gs.CurrentRound < gs.MaxRounds && gs.Winner == "" {
		gs.CurrentRound++
		gs.RoundStartedAt = reg.now()
		reg.armRoundTimer(r)
		reg.broadcastLocked(r, protocol.NewRoundStarted(gs.CurrentRound, int(reg.roundDuration.Seconds())), "")
		return
	}

	r.State = StateFinished
	scores := make(map[string]int, len(gs.Scores))
	for name, score := range gs.Scores {
		scores[name] = score
	}
	overall := overallWinner(scores)
	log.Info().Str("code", r.Code).Str("word", gs.TargetWord).Msg("game ended")
	reg.broadcastLocked(r, protocol.NewGameEnded(gs.TargetWord, scores, overall), "")
	r.Game = nil
}

// overallWinner picks the player with the strictly highest cumulative score.
// Ties and all-zero games have no winner.
func overallWinner(scores map[string]int) *string {
	best, bestScore, tied := "", 0, false
	for name, score := range scores {
		switch {
		case score > bestScore:
			best, bestScore, tied = name, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return nil
	}
	return &best
}

// armRoundTimer replaces any pending round timer with a fresh one. The
// callback checks both that a game is still running and that it is still the
// same round, so a timer that fired just before Stop cannot end a later
// round early.
func (reg *Registry) armRoundTimer(r *Room) {
	gs := r.Game
	gs.stopTimer()
	round := gs.CurrentRound
	gs.roundTimer = time.AfterFunc(reg.roundDuration, func() {
		reg.onRoundTimeout(r, round)
	})
}

func (reg *Registry) onRoundTimeout(r *Room, round int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if r.Game == nil || r.Game.CurrentRound != round {
		return
	}
	log.Info().Str("code", r.Code).Int("round", round).Msg("round timed out")
	reg.endRoundLocked(r)
}

func (gs *GameState) stopTimer() {
	if gs.roundTimer != nil {
		gs.roundTimer.Stop()
		gs.roundTimer = nil
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
