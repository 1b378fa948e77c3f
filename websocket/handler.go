package websocket

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"munhub/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// TokenParser turns a bearer token into the caller's principal.
type TokenParser func(token string) (models.Principal, error)

// Handler upgrades committee websocket requests and registers them with the hub.
type Handler struct {
	hub      *Hub
	parse    TokenParser
	upgrader websocket.Upgrader
	logger   *zap.Logger

	// PingPeriod overrides the keepalive interval; tests shorten it.
	PingPeriod time.Duration
}

// NewHandler builds the upgrade handler. An empty allowedOrigins list, or one
// containing "*", accepts every origin.
func NewHandler(hub *Hub, parse TokenParser, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		hub:   hub,
		parse: parse,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger:     logger,
		PingPeriod: pingPeriod,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(set) == 0 || origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

type clientMessage struct {
	Type string `json:"type"`
}

// ServeCommittee handles GET /ws/committees/:committeeId?token=...
func (h *Handler) ServeCommittee(c *gin.Context) {
	committeeID, err := primitive.ObjectIDFromHex(c.Param("committeeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid committee ID"})
		return
	}
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	principal, err := h.parse(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	conn := NewConn(ws)
	log := h.logger.With(zap.String("committeeId", committeeID.Hex()), zap.String("connId", conn.ID()))

	if !h.hub.Register(committeeID, conn, principal) {
		_ = conn.SafeWriteJSON(ErrorEvent("Not authorized for this committee"))
		_ = conn.Close()
		return
	}
	defer func() {
		h.hub.Unregister(committeeID, conn)
		_ = conn.Close()
	}()

	if err := conn.SafeWriteJSON(Connected(principal)); err != nil {
		log.Warn("failed to send connected message", zap.Error(err))
		return
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.keepalive(conn, done)
	}()
	defer wg.Wait()
	defer close(done)

	h.readLoop(conn, log)
}

func (h *Handler) readLoop(conn *Conn, log *zap.Logger) {
	ws := conn.ws
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("ignoring malformed client message", zap.Error(err))
			continue
		}
		switch msg.Type {
		case "ping":
			if err := conn.SafeWriteJSON(Pong()); err != nil {
				return
			}
		default:
			// clients only listen
		}
	}
}

func (h *Handler) keepalive(conn *Conn, done <-chan struct{}) {
	ticker := time.NewTicker(h.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
