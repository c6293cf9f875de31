package server

import (
	"encoding/json"
	"time"
)

// Message is the envelope of every websocket frame
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a message stamped with now
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: now,
	}, nil
}

// Client → Server Messages

// DecideData describes the table from the AI's seat. The round follows from
// the number of board cards.
type DecideData struct {
	Hole          []string `json:"hole"`
	Board         []string `json:"board,omitempty"`
	CurrentBet    int      `json:"currentBet"`
	OwnBet        int      `json:"ownBet"`
	Pot           int      `json:"pot"`
	OwnStack      int      `json:"ownStack"`
	OpponentStack int      `json:"opponentStack"`
}

type EvaluateData struct {
	Cards []string `json:"cards"`
}

type CompareData struct {
	First  []string `json:"first"`
	Second []string `json:"second"`
}

// Server → Client Messages

type HandStartedData struct {
	RangeSize int `json:"rangeSize"`
}

type DecisionData struct {
	Action     string  `json:"action"`
	Amount     int     `json:"amount,omitempty"`
	Call       bool    `json:"call,omitempty"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
	Round      string  `json:"round"`
	RangeSize  int     `json:"rangeSize"`
}

type EvaluationData struct {
	Category string `json:"category"`
	Rank     int    `json:"rank"`
}

type ComparisonData struct {
	First   string `json:"first"`
	Second  string `json:"second"`
	Outcome string `json:"outcome"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
