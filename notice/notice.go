package notice

import (
	"sync"
	"time"
)

// Variant selects how a notice is styled
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Notice is a transient user-visible message
type Notice struct {
	Title       string
	Description string
	Variant     Variant
	At          time.Time
}

// Notifier raises notices
type Notifier interface {
	Notify(n Notice)
}

// SessionExpired is raised when a request could not be recovered by refreshing the token.
func SessionExpired() Notice {
	return Notice{Title: "Session Expired", Description: "Please login again.", Variant: VariantDestructive}
}

// Error is raised for a failed backend call.
func Error(description string) Notice {
	return Notice{Title: "Error", Description: description, Variant: VariantDestructive}
}

// DefaultLimit is how many notices a Recorder keeps
const DefaultLimit = 5

// Recorder keeps the most recent notices until the next page render drains them.
type Recorder struct {
	mu      sync.Mutex
	limit   int
	notices []Notice
}

func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recorder{limit: limit}
}

func (r *Recorder) Notify(n Notice) {
	if n.At.IsZero() {
		n.At = NowTimeFunc()
	}
	if n.Variant == "" {
		n.Variant = VariantDefault
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	if len(r.notices) > r.limit {
		r.notices = r.notices[len(r.notices)-r.limit:]
	}
}

// Drain returns the pending notices, oldest first, and forgets them.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	notices := r.notices
	r.notices = nil
	return notices
}
