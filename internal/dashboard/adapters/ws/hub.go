// Package ws доставляет события об изменениях заметок в браузер через websocket.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"notesflow/internal/dashboard/ports/events"
	"notesflow/pkg/logger"
	"notesflow/pkg/workflow"
)

// Path - путь websocket подключения.
const Path = "/ws"

// DefaultPingInterval используется, когда интервал ping не положителен.
const DefaultPingInterval = 30 * time.Second

const (
	sendBufferSize = 16
	writeWait      = 10 * time.Second
	tokenParam     = "token"
	bearerPrefix   = "Bearer "
)

// Константы для логирования.
const (
	LogClientConnected    = "websocket client connected"
	LogClientDisconnected = "websocket client disconnected"
	LogClientLagging      = "websocket client send buffer full, event dropped"
	LogUpgradeFailed      = "websocket upgrade failed"
	LogUnexpectedClose    = "websocket closed unexpectedly"

	ErrMissingToken = "missing token"
	ErrInvalidToken = "invalid or expired token"
)

// TokenValidator проверяет токен подключающегося пользователя.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (workflow.Principal, error)
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub хранит подключения по пользователям и рассылает им события.
type Hub struct {
	mu           sync.RWMutex
	clients      map[string]map[*client]struct{}
	tokens       TokenValidator
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	log          *logger.Logger
	onDisconnect func(ctx context.Context, userID string)
}

var _ events.Publisher = (*Hub)(nil)

// NewHub создает hub. Пустой allowOrigins или "*" разрешает любой Origin.
func NewHub(log *logger.Logger, tokens TokenValidator, pingInterval time.Duration, allowOrigins []string) *Hub {
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}
	h := &Hub{
		clients:      make(map[string]map[*client]struct{}),
		tokens:       tokens,
		pingInterval: pingInterval,
		log:          log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowOrigins),
	}
	return h
}

// OnDisconnect задает обработчик, вызываемый после закрытия каждого подключения.
func (h *Hub) OnDisconnect(fn func(ctx context.Context, userID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDisconnect = fn
}

// ServeHTTP проверяет токен и переводит соединение в websocket.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestContext(r)
	log := logger.Log(ctx)

	token := r.URL.Query().Get(tokenParam)
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), bearerPrefix)
	}
	if token == "" {
		http.Error(w, ErrMissingToken, http.StatusUnauthorized)
		return
	}

	principal, err := h.tokens.ValidateAccessToken(ctx, token)
	if err != nil {
		http.Error(w, ErrInvalidToken, http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn(ctx, LogUpgradeFailed, zap.Error(err))
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		userID: principal.UserID,
		send:   make(chan []byte, sendBufferSize),
	}
	h.register(c)
	log.Info(ctx, LogClientConnected, zap.String("user_id", c.userID))

	go c.writePump(h.pingInterval)
	go c.readPump(ctx)
}

// Publish отправляет событие всем подключениям пользователя.
// Медленный клиент теряет событие, но остается подключенным.
func (h *Hub) Publish(ctx context.Context, userID string, event events.ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			logger.Log(ctx).Warn(ctx, LogClientLagging, zap.String("user_id", userID))
		}
	}
}

// Clients возвращает количество подключений пользователя.
func (h *Hub) Clients(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close закрывает все подключения.
func (h *Hub) Close() {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0)
	for _, set := range h.clients {
		for c := range set {
			conns = append(conns, c.conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.clients[c.userID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
}

func (h *Hub) requestContext(r *http.Request) context.Context {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = logger.GenerateRequestID()
	}
	ctx := logger.NewRequestIDContext(context.Background(), requestID)
	if h.log != nil {
		ctx = logger.NewContext(ctx, h.log)
	}
	return ctx
}

// readPump читает и отбрасывает входящие сообщения, пока соединение живо.
func (c *client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
		logger.Log(ctx).Info(ctx, LogClientDisconnected, zap.String("user_id", c.userID))
		c.hub.mu.RLock()
		hook := c.hub.onDisconnect
		c.hub.mu.RUnlock()
		if hook != nil {
			hook(ctx, c.userID)
		}
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log(ctx).Debug(ctx, LogUnexpectedClose, zap.Error(err))
			}
			return
		}
	}
}

// writePump пишет события и ping. Завершается, когда hub закрывает канал send.
func (c *client) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
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
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

func originChecker(allowOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, o := range allowOrigins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.TrimSpace(o)] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
