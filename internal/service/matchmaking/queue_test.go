package matchmaking_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourline/server/internal/domain"
	"github.com/fourline/server/internal/service/matchmaking"
)

const testTimeout = 10 * time.Second

func newTestQueue() (*matchmaking.Queue, *clock.Mock) {
	mock := clock.NewMock()
	return matchmaking.NewQueue(testTimeout, mock), mock
}

func receiveMatch(t *testing.T, q *matchmaking.Queue) matchmaking.Match {
	t.Helper()
	select {
	case match := <-q.Matches():
		return match
	default:
		t.Fatal("expected a match")
		return matchmaking.Match{}
	}
}

func assertNoMatch(t *testing.T, q *matchmaking.Queue) {
	t.Helper()
	select {
	case match := <-q.Matches():
		t.Fatalf("unexpected match %v", match)
	default:
	}
}

func TestJoin_PairsFIFO(t *testing.T) {
	q, _ := newTestQueue()

	q.Join("alice")
	assertNoMatch(t, q)
	require.Equal(t, 1, q.Len())

	q.Join("bob")
	match := receiveMatch(t, q)
	assert.Equal(t, "alice", match.Player1, "the longest waiter takes slot 0")
	assert.Equal(t, "bob", match.Player2)
	assert.False(t, match.IsBot)
	assert.Equal(t, 0, q.Len())
}

func TestJoin_DuplicateIsIgnored(t *testing.T) {
	q, _ := newTestQueue()

	q.Join("alice")
	q.Join("alice")
	assert.Equal(t, 1, q.Len())
	assertNoMatch(t, q)
}

func TestBotFallback_FiresExactlyOnceAtTimeout(t *testing.T) {
	q, mock := newTestQueue()

	q.Join("alice")

	mock.Add(testTimeout - time.Millisecond)
	assertNoMatch(t, q)

	mock.Add(time.Millisecond)
	match := receiveMatch(t, q)
	assert.Equal(t, "alice", match.Player1)
	assert.Equal(t, domain.BotUsername, match.Player2)
	assert.True(t, match.IsBot)
	assert.Equal(t, 0, q.Len())

	// Advancing further never produces a second bot match.
	mock.Add(10 * testTimeout)
	assertNoMatch(t, q)
}

func TestBotFallback_CancelledByPairing(t *testing.T) {
	q, mock := newTestQueue()

	q.Join("alice")
	q.Join("bob")
	receiveMatch(t, q)

	mock.Add(10 * testTimeout)
	assertNoMatch(t, q)
}

func TestRemove_CancelsTimerAndIsIdempotent(t *testing.T) {
	q, mock := newTestQueue()

	q.Join("alice")
	q.Remove("alice")
	q.Remove("alice")
	assert.Equal(t, 0, q.Len())

	mock.Add(10 * testTimeout)
	assertNoMatch(t, q)
}

func TestRemove_PreservesOrderOfOthers(t *testing.T) {
	q, mock := newTestQueue()

	q.Join("alice")
	mock.Add(time.Second)
	q.Remove("alice")

	q.Join("carol")
	q.Join("dave")

	match := receiveMatch(t, q)
	assert.Equal(t, "carol", match.Player1)
	assert.Equal(t, "dave", match.Player2)
}
