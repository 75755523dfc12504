package notify

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrSurfaceClosed = errors.New("notify: surface closed")

type ActionKind string

const (
	ActionDismiss ActionKind = "dismiss"
	ActionSnooze  ActionKind = "snooze"
)

type Action struct {
	Kind  ActionKind
	Label string
}

// Content is what the alert surface shows for one alarm id.
type Content struct {
	Title       string
	Text        string
	Ongoing     bool
	Actions     []Action
	Placeholder bool
}

// Surface is the user-visible alert area. StartForeground must succeed
// before an alert may ring; Update replaces the content posted under id.
type Surface interface {
	StartForeground(id int64, c Content) error
	Update(id int64, c Content) error
	Cancel(id int64)
}

type Post struct {
	ID       int64
	Content  Content
	PostedAt time.Time
}

// Board is the in-memory Surface the terminal UI renders. It also collects
// toasts.
type Board struct {
	mu      sync.Mutex
	posts   map[int64]Post
	toast   string
	closed  bool
	changed chan struct{}
	now     func() time.Time
}

func NewBoard() *Board {
	return &Board{
		posts:   make(map[int64]Post),
		changed: make(chan struct{}, 1),
		now:     time.Now,
	}
}

func (b *Board) StartForeground(id int64, c Content) error {
	return b.put(id, c)
}

func (b *Board) Update(id int64, c Content) error {
	return b.put(id, c)
}

func (b *Board) Cancel(id int64) {
	b.mu.Lock()
	_, ok := b.posts[id]
	delete(b.posts, id)
	b.mu.Unlock()
	if ok {
		b.signal()
	}
}

// Close makes every later StartForeground and Update fail.
func (b *Board) Close() {
	b.mu.Lock()
	b.closed = true
	b.posts = make(map[int64]Post)
	b.mu.Unlock()
	b.signal()
}

func (b *Board) Get(id int64) (Post, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.posts[id]
	return p, ok
}

// Posts returns the current posts ordered by id.
func (b *Board) Posts() []Post {
	b.mu.Lock()
	out := make([]Post, 0, len(b.posts))
	for _, p := range b.posts {
		out = append(out, p)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Board) Toast(msg string) {
	b.mu.Lock()
	b.toast = msg
	b.mu.Unlock()
	b.signal()
}

// TakeToast returns the pending toast and clears it.
func (b *Board) TakeToast() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := b.toast
	b.toast = ""
	return msg, msg != ""
}

// Changed delivers a signal after any post, cancel or toast. Signals coalesce.
func (b *Board) Changed() <-chan struct{} {
	return b.changed
}

func (b *Board) put(id int64, c Content) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrSurfaceClosed
	}
	b.posts[id] = Post{ID: id, Content: c, PostedAt: b.now()}
	b.mu.Unlock()
	b.signal()
	return nil
}

func (b *Board) signal() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}
