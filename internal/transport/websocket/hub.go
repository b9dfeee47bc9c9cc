package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"doma/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// event — уведомление, уходящее клиенту по WebSocket.
type event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	send   chan []byte
}

// Hub раздает уведомления о новых сообщениях подключенным пользователям.
// Один пользователь может держать несколько соединений (вкладки, устройства).
type Hub struct {
	authService service.AuthService
	logger      *zap.Logger

	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}

	register   chan *client
	unregister chan *client
}

func NewHub(authService service.AuthService, logger *zap.Logger) *Hub {
	return &Hub{
		authService: authService,
		logger:      logger,
		clients:     make(map[int64]map[*client]struct{}),
		register:    make(chan *client),
		unregister:  make(chan *client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.userID] == nil {
				h.clients[c.userID] = make(map[*client]struct{})
			}
			h.clients[c.userID][c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("клиент подключен", zap.Int64("userID", c.userID))

		case c := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[c.userID]; ok {
				if _, ok := conns[c]; ok {
					delete(conns, c)
					close(c.send)
					if len(conns) == 0 {
						delete(h.clients, c.userID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("клиент отключен", zap.Int64("userID", c.userID))
		}
	}
}

// Notify отправляет событие всем соединениям пользователя. Пользователь
// без активных соединений просто не получает уведомление.
func (h *Hub) Notify(userID int64, eventType string, payload interface{}) {
	data, err := json.Marshal(event{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("ошибка сериализации уведомления", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			// Переполненный буфер значит мертвое соединение.
			h.logger.Warn("буфер отправки переполнен, соединение будет закрыто", zap.Int64("userID", userID))
		}
	}
}

// HandleWebSocket апгрейдит соединение. Токен передается в query-параметре,
// так как браузерный WebSocket не умеет ставить заголовок Authorization.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "требуется токен"})
		return
	}

	userID, _, err := h.authService.ParseToken(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "недействительный токен"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("ошибка апгрейда соединения", zap.Error(err))
		return
	}

	cl := &client{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}

	h.register <- cl

	go cl.writePump()
	go cl.readPump()
}

// readPump читает входящие кадры только ради ping/pong и закрытия,
// уведомления идут в одну сторону.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("соединение закрыто с ошибкой", zap.Int64("userID", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
