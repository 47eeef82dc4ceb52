package widget

import (
	"CommentWall/internal/models"
	"strconv"
)

const DefaultLimit = 100

// Entry is one displayed comment. Temporary entries are optimistic placeholders for a
// submission still in flight; Preview holds their local image until upload.
type Entry struct {
	Key       string
	Temporary bool
	Comment   models.Comment
	Preview   *models.Image
}

// CommentKey is the list key of a persisted comment.
func CommentKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// List is the ordered set of displayed entries, newest first, keyed for O(1)
// membership tests. It is not safe for concurrent use.
type List struct {
	entries []Entry
	keys    map[string]struct{}
	limit   int
}

func NewList(limit int) *List {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &List{keys: make(map[string]struct{}), limit: limit}
}

// Load installs a fetched page. Entries already held that the page does not contain
// stay on top, so inserts received while the page was loading are not lost.
func (l *List) Load(page []models.Comment) {
	fetched := make(map[string]struct{}, len(page))
	for _, c := range page {
		fetched[CommentKey(c.ID)] = struct{}{}
	}

	entries := make([]Entry, 0, len(l.entries)+len(page))
	keys := make(map[string]struct{}, cap(entries))
	for _, e := range l.entries {
		if _, ok := fetched[e.Key]; ok {
			continue
		}
		entries = append(entries, e)
		keys[e.Key] = struct{}{}
	}
	for _, c := range page {
		key := CommentKey(c.ID)
		if _, ok := keys[key]; ok {
			continue
		}
		entries = append(entries, Entry{Key: key, Comment: c})
		keys[key] = struct{}{}
	}

	l.entries, l.keys = entries, keys
	l.trim()
}

// Prepend puts e at the head. It reports false, leaving the list untouched, when an
// entry with the same key is already held.
func (l *List) Prepend(e Entry) bool {
	if l.Has(e.Key) {
		return false
	}
	l.entries = append([]Entry{e}, l.entries...)
	l.keys[e.Key] = struct{}{}
	l.trim()
	return true
}

// Promote replaces the temporary entry tempKey with the confirmed comment at the same
// position. When the comment is already held (delivered by the realtime feed first)
// the temporary entry is dropped instead.
func (l *List) Promote(tempKey string, c models.Comment) {
	key := CommentKey(c.ID)
	if l.Has(key) {
		l.Remove(tempKey)
		return
	}
	for i := range l.entries {
		if l.entries[i].Key != tempKey {
			continue
		}
		delete(l.keys, tempKey)
		l.entries[i] = Entry{Key: key, Comment: c}
		l.keys[key] = struct{}{}
		return
	}
	l.Prepend(Entry{Key: key, Comment: c})
}

// Remove drops the entry with the given key and reports whether it was present.
func (l *List) Remove(key string) bool {
	if !l.Has(key) {
		return false
	}
	for i := range l.entries {
		if l.entries[i].Key == key {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
	delete(l.keys, key)
	return true
}

func (l *List) Has(key string) bool {
	_, ok := l.keys[key]
	return ok
}

// Entries returns a copy of the displayed entries.
func (l *List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *List) Len() int {
	return len(l.entries)
}

// trim drops the oldest persisted entries beyond the limit. Temporary entries are kept.
func (l *List) trim() {
	for i := len(l.entries) - 1; len(l.entries) > l.limit && i >= 0; i-- {
		if l.entries[i].Temporary {
			continue
		}
		delete(l.keys, l.entries[i].Key)
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
}
