package widget

import (
	"CommentWall/internal/models"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"io"
	"strconv"
	"sync"
	"time"
)

var ErrMounted = errors.New("view is already mounted")

// View owns the displayed comments, the submitting flag and the last error of one
// widget instance, plus its realtime subscription between Mount and Unmount.
type View struct {
	gw        Gateway
	submitter *Submitter
	limit     int
	onChange  func()
	now       func() time.Time
	log       *zap.Logger

	mu         sync.Mutex
	list       *List
	submitting bool
	err        error
	mounted    bool
	sub        io.Closer
	seq        uint64
}

type Option func(*View)

func WithLogger(log *zap.Logger) Option {
	return func(v *View) { v.log = log }
}

// WithOnChange registers fn to run after every change to the view's state. It is
// called without the view's lock held.
func WithOnChange(fn func()) Option {
	return func(v *View) { v.onChange = fn }
}

// WithLimit caps the number of displayed entries.
func WithLimit(n int) Option {
	return func(v *View) { v.limit = n }
}

func NewView(gw Gateway, opts ...Option) *View {
	v := &View{
		gw:    gw,
		limit: DefaultLimit,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.log = v.log.Named("widget")
	v.list = NewList(v.limit)
	v.submitter = NewSubmitter(gw, v.log)
	return v
}

// Mount subscribes to inserts and loads the initial list. A failed fetch leaves the
// list empty; a failed subscription is returned, but the list is still loaded.
func (v *View) Mount(ctx context.Context) error {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return ErrMounted
	}
	v.mounted = true
	v.mu.Unlock()

	sub, subErr := v.gw.Subscribe(ctx, v.ingest)
	if subErr != nil {
		v.log.Warn("Realtime updates unavailable", zap.Error(subErr))
		subErr = fmt.Errorf("failed to subscribe: %w", subErr)
	} else {
		v.mu.Lock()
		if v.mounted {
			v.sub, sub = sub, nil
		}
		v.mu.Unlock()
		if sub != nil {
			if err := v.gw.Unsubscribe(sub); err != nil {
				v.log.Warn("Failed to release subscription", zap.Error(err))
			}
		}
	}

	page, err := v.gw.FetchComments(ctx)
	if err != nil {
		v.log.Error("Failed to load comments", zap.Error(err))
		return subErr
	}
	v.mu.Lock()
	v.list.Load(page)
	v.mu.Unlock()
	v.changed()
	return subErr
}

// Unmount releases the subscription. Inserts arriving afterwards are ignored.
func (v *View) Unmount() error {
	v.mu.Lock()
	sub := v.sub
	v.sub = nil
	v.mounted = false
	v.mu.Unlock()

	if sub == nil {
		return nil
	}
	if err := v.gw.Unsubscribe(sub); err != nil {
		v.log.Warn("Failed to release subscription", zap.Error(err))
		return err
	}
	return nil
}

// Submit posts d with an optimistic entry at the head of the list. The entry is
// promoted when the backend confirms and removed when any step fails. While a
// submission is outstanding further calls return ErrSubmitting.
func (v *View) Submit(ctx context.Context, d Draft) error {
	d = d.Trimmed()
	if !d.Valid() {
		return ErrEmptyDraft
	}
	if d.Image != nil && d.Image.Size() > models.MaxImageBytes {
		return ErrImageTooLarge
	}

	v.mu.Lock()
	if v.submitting {
		v.mu.Unlock()
		return ErrSubmitting
	}
	v.submitting = true
	v.err = nil
	key := v.tempKey()
	v.list.Prepend(Entry{
		Key:       key,
		Temporary: true,
		Comment: models.Comment{
			Content:   d.Message,
			UserName:  d.Name,
			CreatedAt: v.now().UTC(),
		},
		Preview: d.Image,
	})
	v.mu.Unlock()
	v.changed()

	out := v.submitter.Submit(ctx, d)

	v.mu.Lock()
	if out.OK() {
		v.list.Promote(key, *out.Comment)
	} else {
		v.list.Remove(key)
		v.err = out.Err
	}
	v.submitting = false
	v.mu.Unlock()
	v.changed()
	return out.Err
}

func (v *View) Entries() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Entries()
}

func (v *View) Submitting() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.submitting
}

// Error is the message of the last failed submission, or "" when the last one
// succeeded or none ran yet.
func (v *View) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err == nil {
		return ""
	}
	return v.err.Error()
}

func (v *View) ingest(c models.Comment) {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	added := v.list.Prepend(Entry{Key: CommentKey(c.ID), Comment: c})
	v.mu.Unlock()

	if added {
		v.log.Debug("Comment received", zap.Int64("id", c.ID))
		v.changed()
	}
}

// tempKey must be called with mu held.
func (v *View) tempKey() string {
	prefix := "tmp-" + strconv.FormatInt(v.now().UnixMilli(), 10) + "-"
	for {
		v.seq++
		key := prefix + strconv.FormatUint(v.seq, 10)
		if !v.list.Has(key) {
			return key
		}
	}
}

func (v *View) changed() {
	if v.onChange != nil {
		v.onChange()
	}
}
