// Periodic sweep of abandoned rooms so the registry cannot grow without
// bound. Empty rooms go quickly; occupied-but-idle rooms get an error event
// and their connections closed before deletion.
package room

import (
	"time"

	"github.com/rs/zerolog/log"

	"wordduel/internal/protocol"
)

const (
	cleanupInterval     = 60 * time.Second
	emptyRoomThreshold  = 5 * time.Minute
	staleRoomThreshold  = 30 * time.Minute
	inactiveCloseReason = "Room inactive"
)

// Sweeper runs the cleanup loop on a fixed interval.
type Sweeper struct {
	reg      *Registry
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(reg *Registry) *Sweeper {
	return &Sweeper{
		reg:      reg,
		interval: cleanupInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. Call Stop to end it; Start must not be
// called twice.
func (s *Sweeper) Start() {
	log.Info().Dur("interval", s.interval).Msg("room cleanup started")
	go s.run()
}

func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
	log.Info().Msg("room cleanup stopped")
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reg.sweep()
		case <-s.stop:
			return
		}
	}
}

// sweep deletes every room idle beyond its threshold and reports how many
// went. Occupied rooms are notified and their connections closed first.
func (reg *Registry) sweep() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	now := reg.now()
	cleaned := 0
	for code, r := range reg.rooms {
		idle := now.Sub(r.LastActivity)
		threshold := staleRoomThreshold
		if r.size() == 0 {
			threshold = emptyRoomThreshold
		}
		if idle <= threshold {
			continue
		}

		if r.size() > 0 {
			reg.broadcastLocked(r, protocol.NewError("Room closed due to inactivity"), "")
			for _, id := range r.order {
				_ = r.players[id].Conn.Close(1000, inactiveCloseReason)
			}
		}
		reg.deleteLocked(code)
		cleaned++
	}

	if cleaned > 0 {
		log.Warn().
			Int("cleaned", cleaned).
			Int("activeRooms", len(reg.rooms)).
			Int("totalPlayers", len(reg.playerRooms)).
			Msg("swept stale rooms")
	}
	return cleaned
}
