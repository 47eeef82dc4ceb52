package widget

import "CommentWall/internal/models"

type FormState int

const (
	FormIdle FormState = iota
	FormFilled
	FormSubmitted
)

func (s FormState) String() string {
	switch s {
	case FormIdle:
		return "idle"
	case FormFilled:
		return "filled"
	case FormSubmitted:
		return "submitted"
	}
	return "unknown"
}

// Form holds the local input of one widget. A submission moves it through
// FormSubmitted back to FormIdle once the fields are reset.
type Form struct {
	name     string
	message  string
	image    *models.Image
	state    FormState
	busy     func() bool
	observer func(FormState)
}

// NewForm returns an empty form. busy reports whether the owning view is still
// submitting; it may be nil.
func NewForm(busy func() bool) *Form {
	return &Form{busy: busy}
}

// OnStateChange registers fn to be called with every state the form enters.
func (f *Form) OnStateChange(fn func(FormState)) {
	f.observer = fn
}

func (f *Form) SetName(name string) {
	f.name = name
	f.touch()
}

func (f *Form) SetMessage(message string) {
	f.message = message
	f.touch()
}

// AttachImage sets the profile photo. Files over models.MaxImageBytes are refused and
// the previous photo, if any, is kept.
func (f *Form) AttachImage(img models.Image) error {
	if img.Size() > models.MaxImageBytes {
		return ErrImageTooLarge
	}
	f.image = &img
	f.touch()
	return nil
}

func (f *Form) RemoveImage() {
	f.image = nil
	f.touch()
}

func (f *Form) Name() string         { return f.name }
func (f *Form) Message() string      { return f.message }
func (f *Form) Image() *models.Image { return f.image }
func (f *Form) State() FormState     { return f.state }

// Submit emits the draft and resets every field. It does not wait for the
// submission to resolve.
func (f *Form) Submit() (Draft, error) {
	if f.busy != nil && f.busy() {
		return Draft{}, ErrSubmitting
	}
	d := Draft{Message: f.message, Name: f.name, Image: f.image}.Trimmed()
	if !d.Valid() {
		return Draft{}, ErrEmptyDraft
	}

	f.setState(FormSubmitted)
	f.name, f.message, f.image = "", "", nil
	f.setState(FormIdle)
	return d, nil
}

func (f *Form) touch() {
	if f.name != "" || f.message != "" || f.image != nil {
		f.setState(FormFilled)
		return
	}
	f.setState(FormIdle)
}

func (f *Form) setState(s FormState) {
	if s == f.state {
		return
	}
	f.state = s
	if f.observer != nil {
		f.observer(s)
	}
}
