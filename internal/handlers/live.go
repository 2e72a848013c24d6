package handlers

import (
	"net/http"
	"time"

	"interview-ace/internal/behavior"
	"interview-ace/internal/config"
	"interview-ace/internal/models"
	"interview-ace/internal/pose"
	"interview-ace/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxFrameSize bounds inbound messages; a full 33-landmark frame is
	// a few KB of JSON
	maxFrameSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type LiveHandler struct {
	log *zap.Logger
}

func NewLiveHandler(log *zap.Logger) *LiveHandler {
	return &LiveHandler{log: log}
}

// clientMessage is one inbound websocket message. Type selects which of the
// other fields carry meaning.
type clientMessage struct {
	Type string `json:"type"`

	// pose_frame
	Landmarks      pose.Frame `json:"landmarks,omitempty"`
	PersonDetected *bool      `json:"personDetected,omitempty"`
	HandNearFace   bool       `json:"handNearFace,omitempty"`

	// visibility / focus
	Visible bool `json:"visible,omitempty"`
	Focused bool `json:"focused,omitempty"`
}

type metricsMessage struct {
	Type         string                       `json:"type"`
	BodyLanguage behavior.BodyLanguageMetrics `json:"bodyLanguage"`
	Cheating     behavior.CheatingMetrics     `json:"cheating"`
}

type violationMessage struct {
	Type  string                 `json:"type"`
	Event behavior.CheatingEvent `json:"event"`
}

// Stream upgrades GET /api/sessions/:id/live to a websocket and runs the
// live analysis loop until the client disconnects. The session summary is
// persisted exactly once, when the stream ends.
func (h *LiveHandler) Stream(c *gin.Context) {
	user := currentUser(c)

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := repository.GetSessionByID(c, sessionID)
	if err != nil || session.UserID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if session.EndedAt != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Session already finished"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("sessionID", session.ID))
		return
	}

	engineConf := config.Conf.Engine
	client := &liveClient{
		log:     h.log,
		conn:    conn,
		session: session,
		engine: behavior.NewEngine(nil, behavior.Config{
			EyeContactThreshold:   engineConf.EyeContactThreshold,
			LookAwayDuration:      time.Duration(engineConf.LookAwayDurationMs) * time.Millisecond,
			PersonMissingDuration: time.Duration(engineConf.PersonMissingDurationMs) * time.Millisecond,
		}),
		send: make(chan interface{}, 256),
	}
	client.engine.OnViolation(client.queueViolation)

	h.log.Info("Live analysis started",
		zap.Uint("sessionID", session.ID),
		zap.Uint("userID", user.ID))

	go client.writePump()
	client.readPump() // Blocks until connection closes
}

// liveClient owns one websocket connection and the engine behind it. The
// read pump drives the engine synchronously so every metrics message
// reflects the frame that triggered it; the write pump is the only
// goroutine that writes to the connection.
type liveClient struct {
	log     *zap.Logger
	conn    *websocket.Conn
	session *models.InterviewSession
	engine  *behavior.Engine
	send    chan interface{}
}

func (c *liveClient) readPump() {
	defer func() {
		c.finish()
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("Live socket closed unexpectedly",
					zap.Error(err),
					zap.Uint("sessionID", c.session.ID))
			}
			return
		}
		c.handle(msg)
	}
}

func (c *liveClient) handle(msg clientMessage) {
	switch msg.Type {
	case "pose_frame":
		frame := msg.Landmarks
		if len(frame) == 0 {
			// A detector miss arrives as an empty array; treat it as a gap
			// rather than a frame of invisible landmarks.
			frame = nil
		}
		present := frame != nil
		if msg.PersonDetected != nil {
			present = *msg.PersonDetected
		}
		c.engine.Observe(behavior.Observation{
			Frame:         frame,
			PersonPresent: present,
			HandNearFace:  msg.HandNearFace,
		})
		c.queueMetrics()
	case "visibility":
		c.engine.SetDocumentVisible(msg.Visible)
	case "focus":
		c.engine.SetWindowFocused(msg.Focused)
	case "phone_detected":
		c.engine.TriggerPhoneDetected()
	case "reset":
		c.engine.Reset()
		c.queueMetrics()
	default:
		c.log.Warn("Unknown live message type",
			zap.String("messageType", msg.Type),
			zap.Uint("sessionID", c.session.ID))
	}
}

func (c *liveClient) queueMetrics() {
	body, cheating := c.engine.Snapshot()
	c.queue(metricsMessage{Type: "metrics", BodyLanguage: body, Cheating: cheating})
}

func (c *liveClient) queueViolation(ev behavior.CheatingEvent) {
	c.queue(violationMessage{Type: "violation", Event: ev})
}

// queue enqueues without blocking. A client that cannot keep up loses
// intermediate updates; the next metrics message replaces everything it
// missed.
func (c *liveClient) queue(msg interface{}) {
	select {
	case c.send <- msg:
	default:
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// finish stops the engine and persists the summary with its violation
// records in one transaction.
func (c *liveClient) finish() {
	c.engine.Stop()

	body := c.engine.BodyLanguage()
	cheating := c.engine.Cheating()
	stats := c.engine.Stats()

	now := time.Now().UTC()
	c.session.EndedAt = &now
	c.session.DurationSeconds = int(now.Sub(c.session.StartedAt).Seconds())
	c.session.AvgPostureScore = stats.AvgPostureScore
	c.session.AvgEyeContactScore = stats.AvgEyeContactScore
	c.session.OverallScore = stats.AvgOverallScore
	c.session.SlouchCount = c.engine.SlouchCount()
	c.session.NervousMovementCount = body.HandMovementCount
	c.session.TabSwitchCount = cheating.TabSwitchCount
	c.session.LookingAwayCount = cheating.LookingAwayCount
	c.session.PhoneDetectedCount = cheating.PhoneDetectedCount
	c.session.PersonMissingCount = cheating.PersonMissingCount
	c.session.TotalViolations = cheating.TotalViolations
	c.session.SuspicionLevel = string(cheating.SuspicionLevel)
	c.session.Feedback = body.Feedback

	// The engine logs newest-first; store oldest-first.
	violations := make([]models.ViolationRecord, 0, len(cheating.Events))
	for i := len(cheating.Events) - 1; i >= 0; i-- {
		ev := cheating.Events[i]
		violations = append(violations, models.ViolationRecord{
			EventID:    ev.ID,
			Kind:       string(ev.Kind),
			Message:    ev.Message,
			OccurredAt: ev.Timestamp,
			DurationMs: ev.DurationMs,
		})
	}

	if err := repository.FinishSessionTx(c.session, violations); err != nil {
		c.log.Error("Failed to persist session summary",
			zap.Error(err),
			zap.Uint("sessionID", c.session.ID))
		return
	}

	c.log.Info("Session summary saved",
		zap.Uint("sessionID", c.session.ID),
		zap.Int("framesAnalyzed", stats.FramesAnalyzed),
		zap.Int("totalViolations", cheating.TotalViolations))
}
