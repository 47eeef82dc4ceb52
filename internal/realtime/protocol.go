package realtime

import (
	"CommentWall/internal/models"
	"encoding/json"
	"fmt"
)

// MessageType identifies the kind of event sent over the realtime channel.
type MessageType string

const (
	TypeInsert MessageType = "insert"
)

// Envelope wraps every message pushed to subscribers.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func NewInsertEnvelope(c models.Comment) (*Envelope, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comment: %w", err)
	}
	return &Envelope{Type: TypeInsert, Data: data}, nil
}

func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	return &env, nil
}

// Comment decodes the payload of an insert envelope.
func (e *Envelope) Comment() (models.Comment, error) {
	var c models.Comment
	if e.Type != TypeInsert {
		return c, fmt.Errorf("unexpected message type %q", e.Type)
	}
	if err := json.Unmarshal(e.Data, &c); err != nil {
		return c, fmt.Errorf("invalid insert payload: %w", err)
	}
	return c, nil
}
