package widget

import (
	"CommentWall/internal/models"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "Just now"},
		{59 * time.Second, "Just now"},
		{time.Minute, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{2 * time.Hour, "2h ago"},
		{23*time.Hour + 59*time.Minute, "23h ago"},
		{3 * 24 * time.Hour, "3d ago"},
		{8 * 24 * time.Hour, "Jun 2, 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatAge(now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRender(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	photo := "http://img/1_me.png"
	entries := []Entry{
		{Key: "tmp-1-1", Temporary: true, Comment: models.Comment{UserName: "Ada", Content: "Hello world", CreatedAt: now}, Preview: &models.Image{Name: "me.png"}},
		{Key: "1", Comment: models.Comment{ID: 1, UserName: "Bob", Content: "first\nsecond", ProfileImage: &photo, CreatedAt: now.Add(-5 * time.Minute)}},
	}

	var buf bytes.Buffer
	if err := Render(&buf, entries, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Comments (2)\n",
		"Ada · Just now (sending…)\n  Hello world\n  [photo] me.png\n",
		"Bob · 5m ago\n  first\n  second\n  [photo] http://img/1_me.png\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("want output containing %q, got:\n%s", want, out)
		}
	}
	if strings.Index(out, "Ada") > strings.Index(out, "Bob") {
		t.Error("want entries in list order")
	}
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, nil, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Comments (0)\nNo comments yet. Start the conversation!\n"
	if buf.String() != want {
		t.Errorf("want %q, got %q", want, buf.String())
	}
}

func TestLoadImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/home/ada/me.png", []byte("pixels"), 0o644)
	afero.WriteFile(fs, "/home/ada/big.png", bytes.Repeat([]byte{0}, 6*1024*1024), 0o644)

	img, err := LoadImage(fs, "/home/ada/me.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Name != "me.png" || string(img.Data) != "pixels" {
		t.Errorf("want me.png with data, got %q %q", img.Name, img.Data)
	}

	if _, err := LoadImage(fs, "/home/ada/big.png"); err != ErrImageTooLarge {
		t.Errorf("want ErrImageTooLarge, got %v", err)
	}
	if _, err := LoadImage(fs, "/home/ada/missing.png"); err == nil {
		t.Error("want error for missing file")
	}
}
