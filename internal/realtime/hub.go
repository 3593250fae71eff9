// Package realtime pushes chart frames to open dashboards over websockets.
package realtime

import (
	"time"

	"github.com/gofiber/contrib/v3/websocket"
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/vidpulse/internal/logging"
	"go.uber.org/zap"
)

// PageParam is the route parameter naming the dashboard a socket belongs to.
const PageParam = "page"

type frame struct {
	page string
	msg  []byte
}

type countQuery struct {
	page     string
	response chan int
}

// Hub fans frames out to the sockets of one page. A page may hold several
// sockets, e.g. after a reconnect.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	publish     chan frame
	clientCount chan countQuery
	pages       map[string]map[*Client]struct{}
}

type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

type Client struct {
	hub  *Hub
	page string
	conn wsConn
	send chan []byte
}

type pingTicker interface {
	C() <-chan time.Time
	Stop()
}

type realPingTicker struct {
	*time.Ticker
}

func (t *realPingTicker) C() <-chan time.Time {
	return t.Ticker.C
}

var pingTickerFactory = func() pingTicker {
	return &realPingTicker{time.NewTicker(30 * time.Second)}
}

func NewHub() *Hub {
	h := &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		publish:     make(chan frame, 512),
		clientCount: make(chan countQuery),
		pages:       make(map[string]map[*Client]struct{}),
	}

	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			clients, ok := h.pages[client.page]
			if !ok {
				clients = make(map[*Client]struct{})
				h.pages[client.page] = clients
			}
			clients[client] = struct{}{}
		case client := <-h.unregister:
			if h.remove(client) {
				_ = client.conn.Close()
			}
		case f := <-h.publish:
			for client := range h.pages[f.page] {
				select {
				case client.send <- f.msg:
				default:
					h.remove(client)
				}
			}
		case q := <-h.clientCount:
			q.response <- h.count(q.page)
		}
	}
}

// remove drops client and closes its send channel. It reports whether the
// client was still registered.
func (h *Hub) remove(client *Client) bool {
	clients, ok := h.pages[client.page]
	if !ok {
		return false
	}
	if _, ok := clients[client]; !ok {
		return false
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.pages, client.page)
	}
	close(client.send)
	return true
}

func (h *Hub) count(page string) int {
	if page != "" {
		return len(h.pages[page])
	}
	n := 0
	for _, clients := range h.pages {
		n += len(clients)
	}
	return n
}

// Publish queues msg for every socket of page. It never blocks; frames are
// dropped when the queue is full.
func (h *Hub) Publish(page string, msg []byte) {
	select {
	case h.publish <- frame{page: page, msg: msg}:
	default:
		logging.L().Warn("dropping realtime payload",
			zap.String("page", page),
			zap.String("reason", "slow consumers"),
		)
	}
}

// GetClientCount returns the number of connected sockets for page, or for
// every page when page is empty.
func (h *Hub) GetClientCount(page string) int {
	response := make(chan int)
	h.clientCount <- countQuery{page: page, response: response}
	return <-response
}

// Handler upgrades the request and attaches the socket to the page named by
// the PageParam route parameter.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := &Client{
			hub:  h,
			page: conn.Params(PageParam),
			conn: conn,
			send: make(chan []byte, 64),
		}

		h.register <- client

		go client.writePump()
		client.readPump()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := pingTickerFactory()
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C():
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
