package domain

import (
	"encoding/json"
	"fmt"
)

// Client → server message tags.
const (
	TypeJoin      = "join"
	TypeMove      = "move"
	TypeReconnect = "reconnect"
)

// ClientMessage is the envelope for everything a client can send.
type ClientMessage struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Col      int    `json:"col,omitempty"`
	GameID   string `json:"gameId,omitempty"`
}

// ParseClientMessage decodes a raw frame and rejects unrecognized tags
// so a bad payload is a malformed-message error instead of silently
// matching nothing.
func ParseClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("malformed message: %v", err)
	}

	switch msg.Type {
	case TypeJoin, TypeMove, TypeReconnect:
		return msg, nil
	default:
		return ClientMessage{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// Server → client messages, one struct per tag.

type StartMessage struct {
	Type   string   `json:"type"` // "start"
	You    int      `json:"you"`
	Board  [][]Disc `json:"board"`
	GameID string   `json:"gameId"`
}

type LastMove struct {
	Col    int `json:"col"`
	Row    int `json:"row"`
	Player int `json:"player"`
}

type UpdateMessage struct {
	Type     string   `json:"type"` // "update"
	Board    [][]Disc `json:"board"`
	LastMove LastMove `json:"lastMove"`
}

type EndMessage struct {
	Type   string   `json:"type"`   // "end"
	Winner *string  `json:"winner"` // nil on a draw
	Board  [][]Disc `json:"board"`
	Moves  []Move   `json:"moves"`
}

type ReconnectedMessage struct {
	Type  string   `json:"type"` // "reconnected"
	You   int      `json:"you"`
	Board [][]Disc `json:"board"`
	Turn  int      `json:"turn"`
}

type OpponentDisconnectedMessage struct {
	Type    string `json:"type"` // "opponent_disconnected"
	Message string `json:"message"`
}

func NewStartMessage(slot int, board [][]Disc, gameID string) StartMessage {
	return StartMessage{Type: "start", You: slot, Board: board, GameID: gameID}
}

func NewUpdateMessage(board [][]Disc, last LastMove) UpdateMessage {
	return UpdateMessage{Type: "update", Board: board, LastMove: last}
}

func NewEndMessage(winner *string, board [][]Disc, moves []Move) EndMessage {
	return EndMessage{Type: "end", Winner: winner, Board: board, Moves: moves}
}

func NewReconnectedMessage(slot int, board [][]Disc, turn int) ReconnectedMessage {
	return ReconnectedMessage{Type: "reconnected", You: slot, Board: board, Turn: turn}
}

func NewOpponentDisconnectedMessage(text string) OpponentDisconnectedMessage {
	return OpponentDisconnectedMessage{Type: "opponent_disconnected", Message: text}
}
