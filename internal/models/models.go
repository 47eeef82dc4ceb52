package models

import "time"

// MaxImageBytes bounds profile photos on both sides of the wire.
const MaxImageBytes = 5 * 1024 * 1024

type CommentRequest struct {
	Content      string     `json:"content" validate:"required,max=2000"`
	UserName     string     `json:"userName" validate:"required,max=100"`
	ProfileImage *string    `json:"profileImage" validate:"omitempty,max=2048,url"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

type Comment struct {
	ID           int64     `json:"id"`
	Content      string    `json:"content"`
	UserName     string    `json:"userName"`
	ProfileImage *string   `json:"profileImage"`
	CreatedAt    time.Time `json:"created_at"`
}

// Image is a profile photo picked on the client, before it is uploaded.
type Image struct {
	Name string
	Data []byte
}

func (i Image) Size() int64 {
	return int64(len(i.Data))
}
