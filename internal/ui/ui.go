package ui

import (
	"log/slog"
	"sync"
)

type Kind string

const (
	KindAlert        Kind = "alert"
	KindToastSuccess Kind = "toast_success"
	KindToastError   Kind = "toast_error"
)

type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Notifier surfaces messages to the user. Alert blocks the screen until
// acknowledged; toasts do not.
type Notifier interface {
	Alert(msg string)
	ToastSuccess(msg string)
	ToastError(msg string)
}

type Navigator interface {
	Navigate(path string)
}

// Recorder buffers notices and the last navigation target so a caller can
// hand them to whatever renders the screen.
type Recorder struct {
	mu       sync.Mutex
	notices  []Notice
	location string
}

func (r *Recorder) Alert(msg string)        { r.push(KindAlert, msg) }
func (r *Recorder) ToastSuccess(msg string) { r.push(KindToastSuccess, msg) }
func (r *Recorder) ToastError(msg string)   { r.push(KindToastError, msg) }

func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.location = path
}

func (r *Recorder) push(k Kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Kind: k, Message: msg})
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *Recorder) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

// Drain returns everything recorded since the last call and resets.
func (r *Recorder) Drain() ([]Notice, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	notices, loc := r.notices, r.location
	r.notices, r.location = nil, ""
	return notices, loc
}

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Alert(msg string)        { n.Logger.Warn("alert", "message", msg) }
func (n LogNotifier) ToastSuccess(msg string) { n.Logger.Info("toast", "kind", "success", "message", msg) }
func (n LogNotifier) ToastError(msg string)   { n.Logger.Error("toast", "kind", "error", "message", msg) }

// Tee sends every notice to each notifier in order.
type Tee []Notifier

func (t Tee) Alert(msg string) {
	for _, n := range t {
		n.Alert(msg)
	}
}

func (t Tee) ToastSuccess(msg string) {
	for _, n := range t {
		n.ToastSuccess(msg)
	}
}

func (t Tee) ToastError(msg string) {
	for _, n := range t {
		n.ToastError(msg)
	}
}
