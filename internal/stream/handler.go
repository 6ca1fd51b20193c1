// Package stream exposes a listening session over a WebSocket.
//
// Binary frames carry little-endian PCM16 mono audio at the configured
// sample rate. Text frames carry JSON control messages. Orchestrator events
// and replies are written back as JSON text frames.
package stream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lexiqai/question-stream/internal/observability"
	"github.com/lexiqai/question-stream/internal/orchestrator"
	"github.com/lexiqai/question-stream/internal/question"
)

// Control events accepted from the client
const (
	EventStart     = "start"
	EventStop      = "stop"
	EventClear     = "clear"
	EventState     = "state"
	EventQuestions = "questions"
	EventPartial   = "partial"
	EventMedia     = "media"
)

const (
	outboundBuffer = 256
	writeTimeout   = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// ControlMessage is a JSON message from the client
type ControlMessage struct {
	Event   string `json:"event"`
	Text    string `json:"text,omitempty"`    // Interim transcript for partial events
	Payload string `json:"payload,omitempty"` // Base64 PCM16 for media events
}

// Reply answers a state or questions query, or reports a bad message
type Reply struct {
	Type      string                      `json:"type"`
	SessionID string                      `json:"session_id"`
	State     *orchestrator.StateSnapshot `json:"state,omitempty"`
	Questions []question.DetectedQuestion `json:"questions,omitempty"`
	Message   string                      `json:"message,omitempty"`
}

// SessionFactory builds the orchestrator for a new connection. ctx is
// cancelled when the connection closes.
type SessionFactory func(ctx context.Context, sessionID string) *orchestrator.Orchestrator

// Session is one WebSocket connection bound to one orchestrator
type Session struct {
	conn   *websocket.Conn
	orch   *orchestrator.Orchestrator
	logger zerolog.Logger

	out     chan []byte
	done    chan struct{}
	closeMu sync.Once
}

// Handler upgrades the request and runs a session until the client disconnects
func Handler(newSession SessionFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied to the client
			logger := observability.GetLogger()
			logger.Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sessionID := observability.NewCorrelationID()
		s := &Session{
			conn:   conn,
			orch:   newSession(ctx, sessionID),
			logger: observability.SessionLogger(sessionID).With().Str("component", "stream").Logger(),
			out:    make(chan []byte, outboundBuffer),
			done:   make(chan struct{}),
		}
		s.logger.Info().Str("remote", r.RemoteAddr).Msg("Stream connected")

		s.Run(cancel)
	}
}

// Run pumps messages until the connection closes, then stops the session.
// cancel aborts gateway calls still in flight.
func (s *Session) Run(cancel context.CancelFunc) {
	unsubscribe := s.orch.Subscribe(func(ev orchestrator.Event) {
		s.send(ev)
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop()
	}()

	s.readLoop()

	s.orch.StopListening()
	cancel()
	s.orch.Wait()
	unsubscribe()

	s.close()
	<-writerDone

	stats := s.orch.Stats()
	s.logger.Info().
		Int64("ingested_samples", stats.IngestedSamples).
		Int64("chunked_samples", stats.ChunkedSamples).
		Int64("discarded_samples", stats.DiscardedSamples).
		Int64("chunks", stats.Chunks).
		Msg("Stream closed")
}

func (s *Session) readLoop() {
	for {
		msgType, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			s.orch.SubmitAudio(message)
		case websocket.TextMessage:
			s.handleControl(message)
		}
	}
}

func (s *Session) handleControl(message []byte) {
	var msg ControlMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to parse control message")
		s.send(Reply{Type: "error", SessionID: s.orch.SessionID(), Message: "invalid control message"})
		return
	}

	switch msg.Event {
	case EventStart:
		s.orch.StartListening()
	case EventStop:
		s.orch.StopListening()
	case EventClear:
		s.orch.ClearQuestions()
	case EventState:
		state := s.orch.State()
		s.send(Reply{Type: EventState, SessionID: s.orch.SessionID(), State: &state})
	case EventQuestions:
		s.send(Reply{Type: EventQuestions, SessionID: s.orch.SessionID(), Questions: s.orch.Questions()})
	case EventPartial:
		s.orch.SubmitPartialText(msg.Text)
	case EventMedia:
		data, err := base64.StdEncoding.DecodeString(msg.Payload)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to decode base64 audio")
			s.send(Reply{Type: "error", SessionID: s.orch.SessionID(), Message: "invalid media payload"})
			return
		}
		s.orch.SubmitAudio(data)
	default:
		s.logger.Debug().Str("event", msg.Event).Msg("Unknown control event")
		s.send(Reply{Type: "error", SessionID: s.orch.SessionID(), Message: "unknown event: " + msg.Event})
	}
}

// send queues a message for the writer without blocking the caller
func (s *Session) send(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode outbound message")
		return
	}

	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.out <- b:
	default:
		s.logger.Warn().Msg("Outbound queue full, dropping message")
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case b := <-s.out:
			if !s.write(b) {
				return
			}
		case <-s.done:
			// Deliver what was queued before close
			for {
				select {
				case b := <-s.out:
					if !s.write(b) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (s *Session) write(b []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		s.logger.Debug().Err(err).Msg("WebSocket write failed")
		return false
	}
	return true
}

func (s *Session) close() {
	s.closeMu.Do(func() {
		close(s.done)
	})
}
