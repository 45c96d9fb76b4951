package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/node"
)

// sessionIdleTimeout bounds how long a session may sit between client
// messages before the connection is dropped.
const sessionIdleTimeout = 5 * time.Minute

// Manager accepts WebSocket connections and runs one flow session per
// connection.
type Manager struct {
	runner   *Runner
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewManager creates a new session manager
func NewManager(runner *Runner, logger *zap.Logger) *Manager {
	return &Manager{
		runner: runner,
		logger: logger.Named("session"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// The flow endpoint is demo infrastructure; origin
				// policy is enforced by the CORS layer in deployments.
				return true
			},
		},
	}
}

// HandleConnection upgrades the request and serves the flow session.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	id := uuid.NewString()
	s := &session{
		id:     id,
		conn:   conn,
		runner: m.runner,
		logger: m.logger.With(zap.String("session_id", id)),
	}
	// The request context dies when the handler returns; the hijacked
	// connection outlives it.
	go s.run(context.Background())
}

// session drives one flow over one WebSocket connection.
type session struct {
	id     string
	conn   *websocket.Conn
	runner *Runner
	logger *zap.Logger
}

func (s *session) run(ctx context.Context) {
	defer func() { _ = s.conn.Close() }()

	start, err := s.read()
	if err != nil {
		return
	}
	if start.Type != TypeFlowStart || start.Flow == "" {
		s.sendError("expected flow_start message")
		return
	}

	s.logger.Info("Flow started", zap.String("flow", start.Flow))

	result, output, err := s.runner.Invoke(ctx, start.Flow, s.id, start.Input, node.NoSignal{})
	if err != nil {
		s.sendError(err.Error())
		return
	}

	for result.Suspended() {
		if err := s.send(ServerMessage{
			Type:    TypeFlowProgress,
			FlowID:  s.id,
			Prompts: promptViews(result.Prompts),
		}); err != nil {
			return
		}

		action, err := s.read()
		if err != nil {
			return
		}
		if action.Type != TypeFlowAction {
			s.sendError("expected flow_action message")
			return
		}

		sig, ok := actionSignal(action)
		if !ok {
			s.sendError("unknown flow action: " + action.Action)
			return
		}

		result, output, err = s.runner.Invoke(ctx, start.Flow, s.id, nil, sig)
		if err != nil {
			s.sendError(err.Error())
			return
		}
	}

	_ = s.send(ServerMessage{
		Type:    TypeFlowComplete,
		FlowID:  s.id,
		Outcome: string(result.Outcome),
		Output:  output,
	})
}

// actionSignal maps a flow action to the node signal tagged union.
func actionSignal(msg *ClientMessage) (node.Signal, bool) {
	switch msg.Action {
	case ActionPoll:
		return node.PollTick{}, true
	case ActionChoice:
		return node.DeliveryChoice{Index: msg.Choice}, true
	default:
		return nil, false
	}
}

func (s *session) read() (*ClientMessage, error) {
	_ = s.conn.SetReadDeadline(time.Now().Add(sessionIdleTimeout))

	var msg ClientMessage
	if err := s.conn.ReadJSON(&msg); err != nil {
		s.logger.Debug("Session read ended", zap.Error(err))
		return nil, err
	}
	return &msg, nil
}

func (s *session) send(msg ServerMessage) error {
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug("Session write failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *session) sendError(message string) {
	_ = s.send(ServerMessage{Type: TypeFlowError, FlowID: s.id, Error: message})
}
