package service

import (
	"CommentWall/internal/models"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type fakeRepo struct {
	created   []models.Comment
	list      []*models.Comment
	listLimit int
	err       error
}

func (r *fakeRepo) Create(ctx context.Context, c models.Comment) (*models.Comment, error) {
	if r.err != nil {
		return nil, r.err
	}
	c.ID = int64(len(r.created) + 1)
	r.created = append(r.created, c)
	return &c, nil
}

func (r *fakeRepo) List(ctx context.Context, limit int) ([]*models.Comment, error) {
	r.listLimit = limit
	return r.list, r.err
}

func (r *fakeRepo) Ping(ctx context.Context) error { return r.err }

type fakeImages struct {
	name string
	data string
	err  error
}

func (f *fakeImages) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(r)
	f.name, f.data = name, string(b)
	return "http://img/" + name, nil
}

type fakePublisher struct {
	published []models.Comment
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, c models.Comment) error {
	p.published = append(p.published, c)
	return p.err
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *fakeRepo, pub Publisher) *Service {
	s := NewService(repo, &fakeImages{}, pub, 50, zaptest.NewLogger(t))
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestService_CreateComment(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	s := newTestService(t, repo, pub)

	got, err := s.CreateComment(context.Background(), models.CommentRequest{
		Content:  "  Hello world \n",
		UserName: " Ada ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != 1 {
		t.Errorf("want id 1, got %d", got.ID)
	}
	if got.Content != "Hello world" || got.UserName != "Ada" {
		t.Errorf("want trimmed fields, got content %q name %q", got.Content, got.UserName)
	}
	if !got.CreatedAt.Equal(fixedNow) {
		t.Errorf("want created_at %v, got %v", fixedNow, got.CreatedAt)
	}
	if len(pub.published) != 1 || pub.published[0].ID != got.ID {
		t.Errorf("want one published insert for id %d, got %+v", got.ID, pub.published)
	}
}

func TestService_CreateCommentKeepsClientTimestamp(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestService(t, repo, nil)
	photo := "https://example.com/a.png"
	at := time.Date(2025, 1, 1, 8, 0, 0, 0, time.FixedZone("X", 3600))

	got, err := s.CreateComment(context.Background(), models.CommentRequest{
		Content:      "Hi",
		UserName:     "Bob",
		ProfileImage: &photo,
		CreatedAt:    &at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.CreatedAt.Equal(at) || got.CreatedAt.Location() != time.UTC {
		t.Errorf("want created_at %v in UTC, got %v", at, got.CreatedAt)
	}
	if got.ProfileImage == nil || *got.ProfileImage != photo {
		t.Errorf("want profile image %q, got %v", photo, got.ProfileImage)
	}
}

func TestService_CreateCommentValidation(t *testing.T) {
	blank := "   "
	notURL := "not a url"
	longURL := "https://example.com/" + strings.Repeat("a", 2048)
	tests := []struct {
		name    string
		req     models.CommentRequest
		wantErr bool
		wantMsg string
	}{
		{"blank content", models.CommentRequest{Content: "   ", UserName: "Ada"}, true, "Content is required"},
		{"blank name", models.CommentRequest{Content: "Hi", UserName: "\t"}, true, "UserName is required"},
		{"too long", models.CommentRequest{Content: strings.Repeat("a", 2001), UserName: "Ada"}, true, "at most 2000"},
		{"bad url", models.CommentRequest{Content: "Hi", UserName: "Ada", ProfileImage: &notURL}, true, "must be a URL"},
		{"url too long", models.CommentRequest{Content: "Hi", UserName: "Ada", ProfileImage: &longURL}, true, "at most 2048"},
		{"blank url is dropped", models.CommentRequest{Content: "Hi", UserName: "Ada", ProfileImage: &blank}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			s := newTestService(t, repo, nil)
			got, err := s.CreateComment(context.Background(), tt.req)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.ProfileImage != nil {
					t.Errorf("want nil profile image, got %q", *got.ProfileImage)
				}
				return
			}
			if !errors.Is(err, ErrInvalidComment) {
				t.Fatalf("want ErrInvalidComment, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("want message containing %q, got %q", tt.wantMsg, err.Error())
			}
			if len(repo.created) != 0 {
				t.Errorf("want no insert, got %d", len(repo.created))
			}
		})
	}
}

func TestService_CreateCommentPublishFailureIsNotFatal(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestService(t, repo, &fakePublisher{err: errors.New("broker down")})

	if _, err := s.CreateComment(context.Background(), models.CommentRequest{Content: "Hi", UserName: "Ada"}); err != nil {
		t.Fatalf("want publish failure ignored, got %v", err)
	}
}

func TestService_CreateCommentRepoError(t *testing.T) {
	dbErr := errors.New("connection refused")
	s := newTestService(t, &fakeRepo{err: dbErr}, nil)

	_, err := s.CreateComment(context.Background(), models.CommentRequest{Content: "Hi", UserName: "Ada"})
	if !errors.Is(err, dbErr) {
		t.Fatalf("want wrapped repo error, got %v", err)
	}
}

func TestService_ListCommentsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, 50},
		{"negative", -3, 50},
		{"explicit", 10, 10},
		{"clamped", 1000, maxListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			s := newTestService(t, repo, nil)
			if _, err := s.ListComments(context.Background(), tt.limit); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if repo.listLimit != tt.want {
				t.Errorf("want limit %d, got %d", tt.want, repo.listLimit)
			}
		})
	}
}

func TestService_UploadImage(t *testing.T) {
	images := &fakeImages{}
	s := NewService(&fakeRepo{}, images, nil, 0, zaptest.NewLogger(t))

	url, err := s.UploadImage(context.Background(), "me.png", strings.NewReader("pixels"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "http://img/me.png" {
		t.Errorf("want url %q, got %q", "http://img/me.png", url)
	}
	if images.data != "pixels" {
		t.Errorf("want stored data %q, got %q", "pixels", images.data)
	}

	storeErr := errors.New("disk full")
	s = NewService(&fakeRepo{}, &fakeImages{err: storeErr}, nil, 0, zaptest.NewLogger(t))
	if _, err := s.UploadImage(context.Background(), "me.png", strings.NewReader("pixels")); !errors.Is(err, storeErr) {
		t.Errorf("want wrapped store error, got %v", err)
	}
}
