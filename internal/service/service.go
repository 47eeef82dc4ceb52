package service

import (
	"CommentWall/internal/models"
	"context"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"io"
	"strings"
	"time"
)

const maxListLimit = 100

var ErrInvalidComment = errors.New("invalid comment")

type Repository interface {
	Create(ctx context.Context, c models.Comment) (*models.Comment, error)
	List(ctx context.Context, limit int) ([]*models.Comment, error)
	Ping(ctx context.Context) error
}

type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Publisher receives every stored comment. It may be nil when inserts reach
// subscribers another way (the Postgres trigger).
type Publisher interface {
	Publish(ctx context.Context, c models.Comment) error
}

type Service struct {
	repo         Repository
	images       ImageStore
	pub          Publisher
	validate     *validator.Validate
	defaultLimit int
	now          func() time.Time
	log          *zap.Logger
}

func NewService(repo Repository, images ImageStore, pub Publisher, defaultLimit int, log *zap.Logger) *Service {
	if defaultLimit <= 0 || defaultLimit > maxListLimit {
		defaultLimit = maxListLimit
	}
	return &Service{
		repo:         repo,
		images:       images,
		pub:          pub,
		validate:     validator.New(),
		defaultLimit: defaultLimit,
		now:          time.Now,
		log:          log.Named("service"),
	}
}

func (s *Service) CreateComment(ctx context.Context, cr models.CommentRequest) (*models.Comment, error) {
	cr.Content = strings.TrimSpace(cr.Content)
	cr.UserName = strings.TrimSpace(cr.UserName)
	if cr.ProfileImage != nil && strings.TrimSpace(*cr.ProfileImage) == "" {
		cr.ProfileImage = nil
	}
	if err := s.validate.Struct(cr); err != nil {
		s.log.Debug("Rejected comment", zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrInvalidComment, describe(err))
	}

	comment := models.Comment{
		Content:      cr.Content,
		UserName:     cr.UserName,
		ProfileImage: cr.ProfileImage,
		CreatedAt:    s.now().UTC(),
	}
	if cr.CreatedAt != nil && !cr.CreatedAt.IsZero() {
		comment.CreatedAt = cr.CreatedAt.UTC()
	}

	created, err := s.repo.Create(ctx, comment)
	if err != nil {
		s.log.Error("Failed to create comment", zap.Error(err))
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	s.log.Debug("Created comment", zap.Int64("id", created.ID))

	if s.pub != nil {
		if err := s.pub.Publish(ctx, *created); err != nil {
			s.log.Warn("Failed to publish insert event", zap.Int64("id", created.ID), zap.Error(err))
		}
	}
	return created, nil
}

func (s *Service) ListComments(ctx context.Context, limit int) ([]*models.Comment, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	s.log.Debug("Listing comments", zap.Int("limit", limit))

	comments, err := s.repo.List(ctx, limit)
	if err != nil {
		s.log.Error("Failed to list comments", zap.Error(err))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *Service) UploadImage(ctx context.Context, name string, r io.Reader) (string, error) {
	url, err := s.images.Save(ctx, name, r)
	if err != nil {
		s.log.Warn("Failed to upload image", zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}

func (s *Service) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// describe turns validator output into a short message fit for the client.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, field+" must be at most "+fe.Param()+" characters")
		case "url":
			msgs = append(msgs, field+" must be a URL")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
