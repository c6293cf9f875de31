package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/poker"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection is one websocket client with its own AI engine. Requests are
// handled in order on the read goroutine, so the engine is never shared.
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan *Message
	engine    *strategy.Engine
	limiter   *rate.Limiter
	metrics   *Metrics
	clock     quartz.Clock
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

func newConnection(id string, conn *websocket.Conn, engine *strategy.Engine, limiter *rate.Limiter, metrics *Metrics, clock quartz.Clock, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		id:      id,
		conn:    conn,
		send:    make(chan *Message, 64),
		engine:  engine,
		limiter: limiter,
		metrics: metrics,
		clock:   clock,
		logger:  logger.WithPrefix("conn").With("conn", id),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues msg for the write pump
func (c *Connection) SendMessage(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		go c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			var syntax *json.SyntaxError
			var mistyped *json.UnmarshalTypeError
			if errors.As(err, &syntax) || errors.As(err, &mistyped) {
				c.sendError("", ErrCodeInvalidMessage, "malformed JSON")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket error", "error", err)
			}
			return
		}
		if !c.limiter.AllowN(c.clock.Now(), 1) {
			c.sendError(msg.RequestID, ErrCodeRateLimited, "too many requests")
			continue
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "request", msg.RequestID)
	c.metrics.requests.WithLabelValues(requestLabel(msg.Type)).Inc()

	switch msg.Type {
	case MessageTypeNewHand:
		c.engine.ResetRange()
		c.reply(msg, MessageTypeHandStarted, HandStartedData{RangeSize: c.engine.Range().Size()})

	case MessageTypeDecide:
		var data DecideData
		if !c.decode(msg, &data) {
			return
		}
		c.handleDecide(msg, data)

	case MessageTypeEvaluate:
		var data EvaluateData
		if !c.decode(msg, &data) {
			return
		}
		cards, err := poker.ParseCards(data.Cards...)
		if err != nil {
			c.sendError(msg.RequestID, ErrCodeInvalidCards, err.Error())
			return
		}
		cat, err := poker.Evaluate(cards)
		if err != nil {
			c.sendError(msg.RequestID, ErrCodeInvalidCards, err.Error())
			return
		}
		c.reply(msg, MessageTypeEvaluation, EvaluationData{Category: cat.String(), Rank: int(cat)})

	case MessageTypeCompare:
		var data CompareData
		if !c.decode(msg, &data) {
			return
		}
		c.handleCompare(msg, data)

	default:
		c.sendError(msg.RequestID, ErrCodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

// requestLabel keeps client-chosen types out of the metric labels
func requestLabel(t MessageType) string {
	switch t {
	case MessageTypeNewHand, MessageTypeDecide, MessageTypeEvaluate, MessageTypeCompare:
		return t.String()
	}
	return "unknown"
}

func (c *Connection) handleDecide(msg *Message, data DecideData) {
	hole, err := poker.ParseCards(data.Hole...)
	if err != nil {
		c.sendError(msg.RequestID, ErrCodeInvalidCards, err.Error())
		return
	}
	board, err := poker.ParseCards(data.Board...)
	if err != nil {
		c.sendError(msg.RequestID, ErrCodeInvalidCards, err.Error())
		return
	}
	round, ok := strategy.RoundForBoard(len(board))
	if !ok {
		c.sendError(msg.RequestID, ErrCodeInvalidSituation, "board must hold 0, 3, 4 or 5 cards")
		return
	}

	s := strategy.Situation{
		CurrentBet:    data.CurrentBet,
		LastOwnBet:    data.OwnBet,
		Pot:           data.Pot,
		OwnStack:      data.OwnStack,
		OpponentStack: data.OpponentStack,
		Hole:          hole,
		Board:         board,
		Round:         round,
	}
	d, err := c.engine.Decide(s)
	if err != nil {
		c.sendError(msg.RequestID, ErrCodeInvalidSituation, err.Error())
		return
	}

	c.logger.Info("Decision", "round", round, "action", d.Action, "amount", d.Amount)
	c.metrics.decisions.WithLabelValues(round.String(), d.Action.String()).Inc()
	c.metrics.confidence.Observe(d.Confidence)
	c.reply(msg, MessageTypeDecision, DecisionData{
		Action:     d.Action.String(),
		Amount:     d.Amount,
		Call:       d.IsCall(s.Owed()),
		Reasoning:  d.Reasoning,
		Confidence: d.Confidence,
		Round:      round.String(),
		RangeSize:  c.engine.Range().Size(),
	})
}

func (c *Connection) handleCompare(msg *Message, data CompareData) {
	first, err := poker.ParseCards(data.First...)
	if err != nil {
		c.sendError(msg.RequestID, ErrCodeInvalidCards, "first: "+err.Error())
		return
	}
	second, err := poker.ParseCards(data.Second...)
	if err != nil {
		c.sendError(msg.RequestID, ErrCodeInvalidCards, "second: "+err.Error())
		return
	}
	sd, err := poker.Compare(first, second)
	if err != nil {
		c.sendError(msg.RequestID, ErrCodeInvalidCards, err.Error())
		return
	}
	c.reply(msg, MessageTypeComparison, ComparisonData{
		First:   sd.First.String(),
		Second:  sd.Second.String(),
		Outcome: sd.Outcome.String(),
	})
}

func (c *Connection) decode(msg *Message, v any) bool {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		c.sendError(msg.RequestID, ErrCodeInvalidMessage, "Failed to parse "+msg.Type.String()+" data")
		return false
	}
	return true
}

func (c *Connection) reply(req *Message, messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	msg.RequestID = req.RequestID
	_ = c.SendMessage(msg)
}

func (c *Connection) sendError(requestID, code, message string) {
	c.metrics.errors.WithLabelValues(code).Inc()
	msg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message}, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}
