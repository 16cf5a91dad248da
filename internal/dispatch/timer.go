package dispatch

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/battlegrid-backend/internal/battle"
)

// DefaultTurnTimeout is the think time a shooter gets before the turn
// moves on without them.
const DefaultTurnTimeout = 10 * time.Second

// turnTimer is the per-session background task enforcing the turn
// deadline. The goroutine owns nothing: every tick re-checks the session
// under the dispatcher lock and the stop channel covers abrupt session
// deletion, so a timer can never outlive its session.
type turnTimer struct {
	session string
	stop    chan struct{}
}

// startTimerLocked spawns the timer for a session entering play. Caller
// holds the lock. Idempotent per session.
func (d *Dispatcher) startTimerLocked(session string) {
	if _, running := d.timers[session]; running {
		return
	}
	t := &turnTimer{session: session, stop: make(chan struct{})}
	d.timers[session] = t
	d.deadlines[session] = d.clock()
	go d.runTimer(t)
}

// stopTimerLocked signals the timer to exit and forgets it. Caller holds
// the lock. Safe to call when no timer is running.
func (d *Dispatcher) stopTimerLocked(session string) {
	if t, ok := d.timers[session]; ok {
		close(t.stop)
		delete(d.timers, session)
		delete(d.deadlines, session)
	}
}

func (d *Dispatcher) runTimer(t *turnTimer) {
	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if !d.tick(t) {
				return
			}
		}
	}
}

// tick checks the deadline under the dispatcher lock and advances the
// turn on expiry. Returns false once the session is gone or back in the
// lobby, deregistering the timer.
func (d *Dispatcher) tick(t *turnTimer) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timers[t.session] != t {
		// Stopped and possibly replaced while this tick was queued.
		return false
	}
	s, ok := d.reg.Session(t.session)
	if !ok || s.Phase != battle.PhaseInGame {
		delete(d.timers, t.session)
		delete(d.deadlines, t.session)
		return false
	}
	if d.clock().Sub(d.deadlines[t.session]) < d.timeout {
		return true
	}

	skipped := s.NextShooter
	next := s.NextPlayer()
	d.deadlines[t.session] = d.clock()
	d.log.Info("turn timed out",
		zap.String("session", s.Name),
		zap.String("skipped", skipped),
		zap.String("next", next))
	d.publishSession(s, SessionEvent{
		Msg:  fmt.Sprintf("%s ran out of time", skipped),
		Next: next,
	})
	return true
}
