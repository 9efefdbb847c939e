package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mmcdole/tabstash/internal/domain"
)

// Settings holds websocket timeouts
type Settings struct {
	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration // Server drops a peer silent for this long
	PingInterval     time.Duration // Must be shorter than ReadTimeout
	SendBufferSize   int           // Messages queued per peer before dropping
}

// DefaultSettings returns the timeouts used when none are configured
func DefaultSettings() Settings {
	return Settings{
		WriteTimeout:     5 * time.Second,
		HandshakeTimeout: 2 * time.Second,
		ReadTimeout:      15 * time.Second,
		PingInterval:     5 * time.Second,
		SendBufferSize:   64,
	}
}

// Server relays every message received from one websocket peer to all
// other peers. It keeps no history: a peer that connects later misses
// earlier messages.
type Server struct {
	settings Settings
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu    sync.Mutex
	peers map[*peer]struct{}
}

type peer struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a relay server
func NewServer(settings Settings, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultSettings()
	if settings.ReadTimeout <= 0 {
		settings.ReadTimeout = defaults.ReadTimeout
	}
	if settings.PingInterval <= 0 || settings.PingInterval >= settings.ReadTimeout {
		settings.PingInterval = settings.ReadTimeout / 3
	}
	return &Server{
		settings: settings,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: settings.HandshakeTimeout,
			// Surfaces are local programs, not browsers
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
		peers:  make(map[*peer]struct{}),
	}
}

// ServeHTTP upgrades the request and serves the peer until it disconnects
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	// Pings keep a live peer's deadline moving; a half-open one times out
	conn.SetReadDeadline(time.Now().Add(s.settings.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.settings.ReadTimeout))
	})

	p := &peer{conn: conn, send: make(chan []byte, s.settings.SendBufferSize)}
	s.mu.Lock()
	s.peers[p] = struct{}{}
	count := len(s.peers)
	s.mu.Unlock()
	s.logger.Info("surface connected", "remote", r.RemoteAddr, "surfaces", count)

	go s.writeLoop(p)
	s.readLoop(p)

	s.mu.Lock()
	delete(s.peers, p)
	s.mu.Unlock()
	close(p.send)
	conn.Close()
	s.logger.Info("surface disconnected", "remote", r.RemoteAddr)
}

func (s *Server) readLoop(p *peer) {
	for {
		messageType, data, err := p.conn.ReadMessage()
		if err != nil {
			s.logger.Debug("read from surface ended", "error", err)
			return
		}
		p.conn.SetReadDeadline(time.Now().Add(s.settings.ReadTimeout))
		if messageType != websocket.TextMessage {
			continue
		}

		var msg domain.Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Identifier == "" {
			s.logger.Debug("dropped malformed message", "error", err)
			continue
		}
		s.broadcast(p, data)
	}
}

func (s *Server) broadcast(from *peer, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.peers {
		if p == from {
			continue
		}
		select {
		case p.send <- data:
		default:
			// Non-blocking if peer is slow
			s.logger.Warn("dropped message for slow surface")
		}
	}
}

func (s *Server) writeLoop(p *peer) {
	ticker := time.NewTicker(s.settings.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-p.send:
			if !ok {
				return
			}
			p.conn.SetWriteDeadline(time.Now().Add(s.settings.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				// a write deadline timeout cannot be recovered
				s.logger.Debug("write to surface failed", "error", err)
				p.conn.Close()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(s.settings.WriteTimeout)
			if err := p.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping to surface failed", "error", err)
				p.conn.Close()
				return
			}
		}
	}
}

// Close disconnects every peer
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.peers {
		p.conn.Close()
	}
	return nil
}

// Client is a domain.Channel connected to a relay Server
type Client struct {
	conn     *websocket.Conn
	settings Settings
	subs     *subscribers
	logger   *slog.Logger

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// Dial connects to the relay server at url (ws://host:port/path)
func Dial(ctx context.Context, url string, settings Settings, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialer := websocket.Dialer{HandshakeTimeout: settings.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}

	c := &Client{
		conn:     conn,
		settings: settings,
		subs:     newSubscribers(),
		logger:   logger,
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer c.Close()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn("relay connection lost", "error", err)
			}
			return
		}

		var msg domain.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("dropped malformed message", "error", err)
			continue
		}
		c.subs.deliver(msg)
	}
}

func (c *Client) Send(_ context.Context, msg domain.Message) error {
	select {
	case <-c.done:
		return domain.ErrChannelClosed
	default:
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) Subscribe(fn func(domain.Message)) (cancel func()) {
	return c.subs.add(fn)
}

func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.settings.WriteTimeout))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

var _ domain.Channel = (*Client)(nil)
