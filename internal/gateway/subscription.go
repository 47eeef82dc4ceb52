package gateway

import (
	"CommentWall/internal/models"
	"CommentWall/internal/realtime"
	"context"
	"fmt"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"io"
	"strings"
	"sync"
	"time"
)

const closeWait = time.Second

// Subscription is a live insert feed. It is released by Close, by Unsubscribe or when
// the context given to Subscribe ends.
type Subscription struct {
	conn *websocket.Conn
	fn   func(models.Comment)
	log  *zap.Logger

	once   sync.Once
	closed chan struct{}
	done   chan struct{}
}

// Subscribe opens the realtime channel and calls fn for every inserted comment, one at
// a time, from a background goroutine.
func (c *Client) Subscribe(ctx context.Context, fn func(models.Comment)) (io.Closer, error) {
	url := c.wsURL() + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		c.log.Error("Failed to subscribe", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	sub := &Subscription{
		conn:   conn,
		fn:     fn,
		log:    c.log.With(zap.String("url", url)),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go sub.read()
	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	c.log.Debug("Subscribed", zap.String("url", url))
	return sub, nil
}

// Unsubscribe releases a handle returned by Subscribe. A nil handle is a no-op.
func (c *Client) Unsubscribe(h io.Closer) error {
	if h == nil {
		return nil
	}
	return h.Close()
}

func (c *Client) wsURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://")
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://")
	}
	return c.baseURL
}

func (s *Subscription) read() {
	defer close(s.done)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.log.Warn("Subscription ended", zap.Error(err))
				}
			}
			return
		}

		env, err := realtime.ParseEnvelope(raw)
		if err != nil {
			s.log.Warn("Skipping malformed event", zap.Error(err))
			continue
		}
		if env.Type != realtime.TypeInsert {
			continue
		}
		comment, err := env.Comment()
		if err != nil {
			s.log.Warn("Skipping malformed insert", zap.Error(err))
			continue
		}

		select {
		case <-s.closed:
			return
		default:
		}
		s.fn(comment)
	}
}

// Close stops delivery and waits briefly for the reader to exit.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeWait))
		err = s.conn.Close()
	})
	select {
	case <-s.done:
	case <-time.After(closeWait):
	}
	return err
}
