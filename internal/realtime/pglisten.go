package realtime

import (
	"CommentWall/internal/models"
	"context"
	"fmt"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"strconv"
	"strings"
	"time"
)

// NotifyChannel is the Postgres channel the comments insert trigger notifies on.
const NotifyChannel = "comments_insert"

// Publisher accepts insert events. Hub and KafkaPublisher implement it.
type Publisher interface {
	Publish(ctx context.Context, c models.Comment) error
}

// CommentLoader reads a stored comment back by id.
type CommentLoader interface {
	Get(ctx context.Context, id int64) (*models.Comment, error)
}

// PGListener turns Postgres NOTIFY payloads into insert events. The trigger only sends
// the new id; the row is loaded back so notifications stay far below the payload limit.
type PGListener struct {
	listener *pq.Listener
	loader   CommentLoader
	log      *zap.Logger
}

func NewPGListener(dsn string, loader CommentLoader, log *zap.Logger) (*PGListener, error) {
	l := &PGListener{loader: loader, log: log.Named("pglisten")}
	l.listener = pq.NewListener(dsn, 10*time.Second, time.Minute, l.event)
	if err := l.listener.Listen(NotifyChannel); err != nil {
		l.listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", NotifyChannel, err)
	}
	return l, nil
}

func (l *PGListener) event(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		l.log.Info("Listening for comment inserts", zap.String("channel", NotifyChannel))
	case pq.ListenerEventDisconnected:
		l.log.Warn("Listener disconnected", zap.Error(err))
	case pq.ListenerEventReconnected:
		l.log.Info("Listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		l.log.Warn("Listener reconnect failed", zap.Error(err))
	}
}

// Run forwards notifications to pub until ctx is cancelled.
func (l *PGListener) Run(ctx context.Context, pub Publisher) {
	health := time.NewTicker(90 * time.Second)
	defer health.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.listener.Notify:
			// nil after a reconnect; events in the gap are lost.
			if n == nil {
				continue
			}
			l.forward(ctx, n.Extra, pub)
		case <-health.C:
			if err := l.listener.Ping(); err != nil {
				l.log.Warn("Listener ping failed", zap.Error(err))
			}
		}
	}
}

func (l *PGListener) Close() error {
	return l.listener.Close()
}

func (l *PGListener) forward(ctx context.Context, payload string, pub Publisher) {
	id, err := decodeNotification(payload)
	if err != nil {
		l.log.Error("Failed to decode notification", zap.String("payload", payload), zap.Error(err))
		return
	}
	c, err := l.loader.Get(ctx, id)
	if err != nil {
		l.log.Error("Failed to load inserted comment", zap.Int64("id", id), zap.Error(err))
		return
	}
	if err := pub.Publish(ctx, *c); err != nil {
		l.log.Error("Failed to publish insert", zap.Int64("id", id), zap.Error(err))
	}
}

func decodeNotification(payload string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid notification payload: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid comment id %d", id)
	}
	return id, nil
}
