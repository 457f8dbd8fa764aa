package matchmaking

import (
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/fourline/server/internal/domain"
)

// Match pairs two participants. Player1 is whoever waited longest, so
// the bot sentinel only ever appears as Player2.
type Match struct {
	Player1 string
	Player2 string
	IsBot   bool
}

// Queue is the FIFO matchmaking queue. Each waiting participant carries
// a cancellable bot-fallback timer; pairing or removal must stop it.
type Queue struct {
	mu      sync.Mutex
	waiting []string
	timers  map[string]*clock.Timer

	matches chan Match
	timeout time.Duration
	clk     clock.Clock
}

func NewQueue(timeout time.Duration, clk clock.Clock) *Queue {
	return &Queue{
		waiting: []string{},
		timers:  make(map[string]*clock.Timer),
		matches: make(chan Match, 100),
		timeout: timeout,
		clk:     clk,
	}
}

// Join pairs the participant with the head of the queue, or enqueues it
// and arms the bot-fallback timer when nobody is waiting.
func (q *Queue) Join(username string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, waiting := range q.waiting {
		if waiting == username {
			return // already queued
		}
	}

	if len(q.waiting) > 0 {
		head := q.waiting[0]
		q.waiting = q.waiting[1:]
		q.stopTimerLocked(head)

		log.Printf("[MATCHMAKING] Paired %s with %s", head, username)
		q.matches <- Match{Player1: head, Player2: username}
		return
	}

	q.waiting = append(q.waiting, username)
	q.timers[username] = q.clk.AfterFunc(q.timeout, func() {
		q.handleTimeout(username)
	})
	log.Printf("[MATCHMAKING] %s queued, bot fallback in %s", username, q.timeout)
}

// handleTimeout converts a still-queued participant into a bot match.
// A timer that lost the race against pairing finds the participant gone
// and does nothing.
func (q *Queue) handleTimeout(username string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.removeLocked(username) {
		return
	}
	q.stopTimerLocked(username)

	log.Printf("[MATCHMAKING] No opponent for %s, starting bot session", username)
	q.matches <- Match{Player1: username, Player2: domain.BotUsername, IsBot: true}
}

// Remove takes a participant out of the queue and cancels its timer.
// Safe to call when the participant is not queued.
func (q *Queue) Remove(username string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.removeLocked(username)
	q.stopTimerLocked(username)
}

func (q *Queue) removeLocked(username string) bool {
	for i, waiting := range q.waiting {
		if waiting == username {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) stopTimerLocked(username string) {
	if timer, ok := q.timers[username]; ok {
		timer.Stop()
		delete(q.timers, username)
	}
}

// Matches exposes the channel the listener drains.
func (q *Queue) Matches() <-chan Match {
	return q.matches
}

// Len reports how many participants are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
