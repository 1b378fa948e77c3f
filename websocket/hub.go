package websocket

import (
	"encoding/json"
	"sync"

	"munhub/models"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Sender is one live client connection.
type Sender interface {
	ID() string
	Send(payload []byte) error
	Close() error
}

// Client is a registered connection together with its caller identity.
type Client struct {
	Conn        Sender
	Role        models.Role
	CountryName string
	Username    string
}

// Hub keeps the live connections of every committee. Sends happen outside
// the lock on a snapshot of the recipients.
type Hub struct {
	mu         sync.RWMutex
	committees map[primitive.ObjectID]map[string]*Client

	logger  *zap.Logger
	metrics *hubMetrics
}

// NewHub returns an empty hub. Metrics go to reg; a nil reg disables them.
func NewHub(logger *zap.Logger, reg prometheus.Registerer) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		committees: make(map[primitive.ObjectID]map[string]*Client),
		logger:     logger,
		metrics:    newHubMetrics(reg),
	}
}

// Register adds conn to the committee. Presidium members and delegates bound
// to another committee are not registered and false is returned.
func (h *Hub) Register(committeeID primitive.ObjectID, conn Sender, p models.Principal) bool {
	if (p.Role == models.RolePresidium || p.Role == models.RoleDelegate) && p.CommitteeID != committeeID {
		h.logger.Info("refusing connection for foreign committee",
			zap.String("committeeId", committeeID.Hex()),
			zap.String("connId", conn.ID()),
			zap.String("role", string(p.Role)),
			zap.String("username", p.Username),
			zap.String("country", p.CountryName),
		)
		return false
	}

	h.mu.Lock()
	clients, ok := h.committees[committeeID]
	if !ok {
		clients = make(map[string]*Client)
		h.committees[committeeID] = clients
	}
	_, existed := clients[conn.ID()]
	clients[conn.ID()] = &Client{
		Conn:        conn,
		Role:        p.Role,
		CountryName: p.CountryName,
		Username:    p.Username,
	}
	total := len(clients)
	h.mu.Unlock()

	if !existed {
		h.metrics.connections.Inc()
	}
	h.logger.Debug("client registered",
		zap.String("committeeId", committeeID.Hex()),
		zap.String("connId", conn.ID()),
		zap.String("role", string(p.Role)),
		zap.Int("clients", total),
	)
	return true
}

// Unregister removes conn. Unknown connections are ignored. A committee with
// no connections left is dropped.
func (h *Hub) Unregister(committeeID primitive.ObjectID, conn Sender) {
	h.remove(committeeID, conn.ID())
}

func (h *Hub) remove(committeeID primitive.ObjectID, connID string) bool {
	h.mu.Lock()
	clients, ok := h.committees[committeeID]
	if !ok {
		h.mu.Unlock()
		return false
	}
	if _, ok := clients[connID]; !ok {
		h.mu.Unlock()
		return false
	}
	delete(clients, connID)
	if len(clients) == 0 {
		delete(h.committees, committeeID)
	}
	h.mu.Unlock()

	h.metrics.connections.Dec()
	return true
}

// Broadcast sends e to every connection of the committee.
func (h *Hub) Broadcast(committeeID primitive.ObjectID, e Event) {
	h.deliver(committeeID, e, func(*Client) bool { return true })
}

// BroadcastToRoles sends e to connections whose role is in roles.
func (h *Hub) BroadcastToRoles(committeeID primitive.ObjectID, roles []models.Role, e Event) {
	h.deliver(committeeID, e, func(c *Client) bool {
		for _, r := range roles {
			if c.Role == r {
				return true
			}
		}
		return false
	})
}

// SendToCountry sends e to the delegates of one country.
func (h *Hub) SendToCountry(committeeID primitive.ObjectID, country string, e Event) {
	h.deliver(committeeID, e, func(c *Client) bool {
		return c.Role == models.RoleDelegate && c.CountryName == country
	})
}

// snapshot copies the matching recipients so no lock is held while sending.
func (h *Hub) snapshot(committeeID primitive.ObjectID, match func(*Client) bool) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := h.committees[committeeID]
	out := make([]*Client, 0, len(clients))
	for _, c := range clients {
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hub) deliver(committeeID primitive.ObjectID, e Event, match func(*Client) bool) {
	recipients := h.snapshot(committeeID, match)
	if len(recipients) == 0 {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("type", e.Type), zap.Error(err))
		return
	}

	h.metrics.events.WithLabelValues(e.Type).Inc()
	for _, c := range recipients {
		if err := c.Conn.Send(payload); err != nil {
			h.metrics.sendFailures.Inc()
			h.logger.Warn("failed to send event, dropping connection",
				zap.String("committeeId", committeeID.Hex()),
				zap.String("connId", c.Conn.ID()),
				zap.String("type", e.Type),
				zap.Error(err),
			)
			if h.remove(committeeID, c.Conn.ID()) {
				_ = c.Conn.Close()
			}
			continue
		}
		h.metrics.delivered.Inc()
	}
}

// Count returns the number of connections of a committee.
func (h *Hub) Count(committeeID primitive.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.committees[committeeID])
}

// Committees returns the number of committees with at least one connection.
func (h *Hub) Committees() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.committees)
}
