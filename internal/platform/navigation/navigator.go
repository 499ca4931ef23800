// Package navigation models the client's current view so that cross-cutting
// policies (global logout, post-login redirect) can move the user without
// knowing how views are rendered.
package navigation

import (
	"strings"
	"sync"
)

const (
	// LoginPath is the view unauthenticated users are sent to.
	LoginPath = "/login"
	// HomePath is the default view after a successful login.
	HomePath = "/"
)

// Navigator reads and changes the active view.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// Router is the in-process Navigator. It records every transition so callers
// (and tests) can assert on redirects.
type Router struct {
	mu       sync.Mutex
	current  string
	history  []string
	onChange func(from, to string)
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithOnChange registers a hook invoked after every navigation.
func WithOnChange(fn func(from, to string)) RouterOption {
	return func(r *Router) { r.onChange = fn }
}

// NewRouter starts at the given path; an empty path means HomePath.
func NewRouter(start string, opts ...RouterOption) *Router {
	start = normalize(start)
	r := &Router{current: start}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Router) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) Navigate(path string) {
	path = normalize(path)
	r.mu.Lock()
	from := r.current
	r.current = path
	r.history = append(r.history, path)
	hook := r.onChange
	r.mu.Unlock()
	if hook != nil {
		hook(from, path)
	}
}

// History returns the navigations performed so far, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return HomePath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

var _ Navigator = (*Router)(nil)
