package matchmaking

import (
	"log"

	"github.com/fourline/server/internal/service/game"
)

// Listener drains the match channel and materializes sessions. Run it
// as a goroutine from the bootstrap; it lives for the process.
func Listener(queue *Queue, sm *game.SessionManager, conn game.ConnectionSender) {
	for match := range queue.Matches() {
		log.Printf("[MATCHMAKING] Match found: %s vs %s (bot=%v)", match.Player1, match.Player2, match.IsBot)
		sm.CreateSession(match.Player1, match.Player2, match.IsBot, conn)
	}
}
