package server

// MessageType names a websocket message
type MessageType string

const (
	// Client to server
	MessageTypeNewHand  MessageType = "new_hand"
	MessageTypeDecide   MessageType = "decide"
	MessageTypeEvaluate MessageType = "evaluate"
	MessageTypeCompare  MessageType = "compare"

	// Server to client
	MessageTypeHandStarted MessageType = "hand_started"
	MessageTypeDecision    MessageType = "decision"
	MessageTypeEvaluation  MessageType = "evaluation"
	MessageTypeComparison  MessageType = "comparison"
	MessageTypeError       MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes sent in ErrorData
const (
	ErrCodeInvalidMessage   = "invalid_message"
	ErrCodeInvalidCards     = "invalid_cards"
	ErrCodeInvalidSituation = "invalid_situation"
	ErrCodeUnknownType      = "unknown_message_type"
	ErrCodeRateLimited      = "rate_limited"
)
