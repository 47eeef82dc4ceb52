package widget

import (
	"CommentWall/internal/models"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"io"
	"strings"
	"time"
)

var (
	ErrEmptyDraft    = errors.New("name and message are required")
	ErrSubmitting    = errors.New("a comment is already being submitted")
	ErrNoRecord      = errors.New("backend did not return the stored comment")
	ErrImageTooLarge = errors.New("image exceeds the 5 MiB limit")
)

// Gateway is the backend as seen by the widget.
type Gateway interface {
	FetchComments(ctx context.Context) ([]models.Comment, error)
	CreateComment(ctx context.Context, cr models.CommentRequest) (*models.Comment, error)
	UploadImage(ctx context.Context, img models.Image) (string, error)
	Subscribe(ctx context.Context, fn func(models.Comment)) (io.Closer, error)
	Unsubscribe(h io.Closer) error
}

// Draft is what the user typed before submitting.
type Draft struct {
	Message string
	Name    string
	Image   *models.Image
}

func (d Draft) Trimmed() Draft {
	d.Message = strings.TrimSpace(d.Message)
	d.Name = strings.TrimSpace(d.Name)
	return d
}

// Valid reports whether both text fields are non-empty after trimming.
func (d Draft) Valid() bool {
	t := d.Trimmed()
	return t.Message != "" && t.Name != ""
}

// Outcome is how a submission resolved: confirmed with the stored comment, or failed.
type Outcome struct {
	Comment *models.Comment
	Err     error
}

func Confirmed(c models.Comment) Outcome {
	return Outcome{Comment: &c}
}

func Failed(err error) Outcome {
	return Outcome{Err: err}
}

func (o Outcome) OK() bool {
	return o.Err == nil && o.Comment != nil
}

// Submitter turns a draft into a stored comment: image upload, then record creation.
// It does not touch any displayed state.
type Submitter struct {
	gw  Gateway
	now func() time.Time
	log *zap.Logger
}

func NewSubmitter(gw Gateway, log *zap.Logger) *Submitter {
	return &Submitter{gw: gw, now: time.Now, log: log.Named("submitter")}
}

// Submit runs the backend calls for d, which must already be trimmed and valid. The
// first failing step ends the submission; nothing is retried.
func (s *Submitter) Submit(ctx context.Context, d Draft) Outcome {
	var imageURL *string
	if d.Image != nil {
		url, err := s.gw.UploadImage(ctx, *d.Image)
		if err != nil {
			s.log.Error("Failed to upload image", zap.String("name", d.Image.Name), zap.Error(err))
			return Failed(fmt.Errorf("failed to upload image: %w", err))
		}
		imageURL = &url
	}

	createdAt := s.now().UTC()
	stored, err := s.gw.CreateComment(ctx, models.CommentRequest{
		Content:      d.Message,
		UserName:     d.Name,
		ProfileImage: imageURL,
		CreatedAt:    &createdAt,
	})
	if err != nil {
		s.log.Error("Failed to create comment", zap.Error(err))
		return Failed(fmt.Errorf("failed to create comment: %w", err))
	}
	if stored == nil || stored.ID == 0 {
		s.log.Error("Comment created without a record")
		return Failed(ErrNoRecord)
	}

	c := *stored
	if c.Content == "" {
		c.Content = d.Message
	}
	if c.UserName == "" {
		c.UserName = d.Name
	}
	if c.ProfileImage == nil {
		c.ProfileImage = imageURL
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = createdAt
	}
	s.log.Debug("Comment confirmed", zap.Int64("id", c.ID))
	return Confirmed(c)
}
