package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ConnectionManager holds the active sockets keyed by username.
type ConnectionManager struct {
	connections map[string]*websocket.Conn

	// writeMu ensures only one goroutine writes to a specific socket at
	// a time; conn.WriteJSON is not safe for concurrent use.
	writeMu map[string]*sync.Mutex

	mu sync.RWMutex // protects the maps themselves
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		writeMu:     make(map[string]*sync.Mutex),
	}
}

// AddConnection registers a connection for a username, closing any
// previous socket the username held.
func (cm *ConnectionManager) AddConnection(username string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if oldConn, exists := cm.connections[username]; exists && oldConn != conn {
		oldConn.Close()
	}

	cm.connections[username] = conn
	cm.writeMu[username] = &sync.Mutex{}
}

// RemoveConnectionIfMatching drops the username's registration only if
// it still points at the given socket, so cleanup of an old connection
// never closes a newer one.
func (cm *ConnectionManager) RemoveConnectionIfMatching(username string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if current, exists := cm.connections[username]; exists && current == conn {
		current.Close()
		delete(cm.connections, username)
		delete(cm.writeMu, username)
	}
}

// SendMessage writes a JSON message to one participant. An unknown
// username is not an error: the participant simply has no live socket,
// and a failed delivery to one seat must stay isolated from the other.
func (cm *ConnectionManager) SendMessage(username string, message any) error {
	cm.mu.RLock()
	conn, exists := cm.connections[username]
	mu, muExists := cm.writeMu[username]
	cm.mu.RUnlock()

	if !exists || !muExists {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(message)
}
