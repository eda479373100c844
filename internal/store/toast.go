package store

import (
	"fmt"
	"sync"

	"github.com/nikbrunner/bmtree/internal/model"
)

// ToastKind classifies a transient message.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
	ToastInfo
)

func (k ToastKind) String() string {
	switch k {
	case ToastSuccess:
		return "success"
	case ToastError:
		return "error"
	case ToastInfo:
		return "info"
	default:
		return fmt.Sprintf("ToastKind(%d)", int(k))
	}
}

// Toast is a short-lived message for the user.
type Toast struct {
	ID      string
	Message string
	Kind    ToastKind
}

func newToast(message string, kind ToastKind) Toast {
	return Toast{ID: model.NewID(), Message: message, Kind: kind}
}

// Notifier presents toasts. Notify is never called while the store is
// locked, so implementations may read from the store.
type Notifier interface {
	Notify(t Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(t Toast)

// Notify calls f(t).
func (f NotifierFunc) Notify(t Toast) { f(t) }

// Recorder is a Notifier that keeps every toast it receives.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

// Notify implements Notifier.
func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

// Toasts returns a copy of the recorded toasts.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Messages returns the recorded toast messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.toasts))
	for i, t := range r.toasts {
		out[i] = t.Message
	}
	return out
}

type discardNotifier struct{}

func (discardNotifier) Notify(Toast) {}
