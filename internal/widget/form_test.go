package widget

import (
	"CommentWall/internal/models"
	"bytes"
	"errors"
	"testing"
)

func TestForm_StateMachine(t *testing.T) {
	f := NewForm(nil)
	var seen []FormState
	f.OnStateChange(func(s FormState) { seen = append(seen, s) })
	if f.State() != FormIdle {
		t.Fatalf("want idle, got %v", f.State())
	}

	f.SetName("Ada")
	if f.State() != FormFilled {
		t.Errorf("want filled, got %v", f.State())
	}
	f.SetName("")
	if f.State() != FormIdle {
		t.Errorf("want idle after clearing, got %v", f.State())
	}

	f.SetName(" Ada ")
	f.SetMessage(" Hello world ")
	if err := f.AttachImage(models.Image{Name: "me.png", Data: []byte("pixels")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, err := f.Submit()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "Ada" || d.Message != "Hello world" || d.Image == nil || d.Image.Name != "me.png" {
		t.Errorf("want trimmed draft with image, got %+v", d)
	}
	if f.State() != FormIdle {
		t.Errorf("want idle after reset, got %v", f.State())
	}
	if f.Name() != "" || f.Message() != "" || f.Image() != nil {
		t.Error("want every field reset")
	}

	want := []FormState{FormFilled, FormIdle, FormFilled, FormSubmitted, FormIdle}
	if len(seen) != len(want) {
		t.Fatalf("want transitions %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("want transitions %v, got %v", want, seen)
			break
		}
	}

	f.SetMessage("next")
	if f.State() != FormFilled {
		t.Errorf("want filled after next edit, got %v", f.State())
	}
}

func TestForm_SubmitRefused(t *testing.T) {
	tests := []struct {
		name    string
		busy    bool
		userNm  string
		message string
		want    error
	}{
		{"blank name", false, "  ", "Hi", ErrEmptyDraft},
		{"blank message", false, "Ada", "\t", ErrEmptyDraft},
		{"busy", true, "Ada", "Hi", ErrSubmitting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm(func() bool { return tt.busy })
			f.SetName(tt.userNm)
			f.SetMessage(tt.message)

			if _, err := f.Submit(); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
			if f.Name() != tt.userNm || f.Message() != tt.message {
				t.Error("want fields kept after a refused submit")
			}
		})
	}
}

func TestForm_AttachImageTooLarge(t *testing.T) {
	f := NewForm(nil)
	small := models.Image{Name: "small.png", Data: []byte("pixels")}
	if err := f.AttachImage(small); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	big := models.Image{Name: "big.png", Data: bytes.Repeat([]byte{0}, 6*1024*1024)}
	if err := f.AttachImage(big); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("want ErrImageTooLarge, got %v", err)
	}
	if f.Image() == nil || f.Image().Name != "small.png" {
		t.Errorf("want previous image kept, got %+v", f.Image())
	}

	f.RemoveImage()
	if f.Image() != nil || f.State() != FormIdle {
		t.Errorf("want image removed and idle, got %+v %v", f.Image(), f.State())
	}
}
