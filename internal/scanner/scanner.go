// Package scanner turns barcode/QR readers into scoped, one-shot or
// continuous decode sessions.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrAlreadyStarted = errors.New("scanner already started")
	ErrClosed         = errors.New("scanner input closed")
)

// Device is a decoder that emits decoded text through onDecode between
// Start and Stop. Stop must be safe to call more than once.
type Device interface {
	Start(ctx context.Context, onDecode func(decoded string)) error
	Stop() error
}

// terminator is implemented by devices whose input can end on its own.
type terminator interface {
	Err() <-chan error
}

// ScanOnce starts device, returns the first decoded value and always stops
// the device before returning, whatever the outcome.
func ScanOnce(ctx context.Context, device Device) (decoded string, err error) {
	results := make(chan string, 1)
	if err := device.Start(ctx, func(text string) {
		select {
		case results <- text:
		default:
		}
	}); err != nil {
		_ = device.Stop()
		return "", fmt.Errorf("start scanner: %w", err)
	}
	defer func() {
		if stopErr := device.Stop(); stopErr != nil && err == nil {
			err = fmt.Errorf("stop scanner: %w", stopErr)
		}
	}()
	var failed <-chan error
	if t, ok := device.(terminator); ok {
		failed = t.Err()
	}
	select {
	case text := <-results:
		return text, nil
	case err := <-failed:
		select {
		case text := <-results:
			return text, nil
		default:
		}
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Watch runs a continuous session, passing every read that differs from the
// previous one to fn, until ctx ends. The device is stopped on return.
func Watch(ctx context.Context, device Device, fn func(Read)) error {
	var (
		mu   sync.Mutex
		last string
	)
	if err := device.Start(ctx, func(text string) {
		mu.Lock()
		if text == last {
			mu.Unlock()
			return
		}
		last = text
		mu.Unlock()
		fn(Read{Text: text, At: time.Now()})
	}); err != nil {
		_ = device.Stop()
		return fmt.Errorf("start scanner: %w", err)
	}
	<-ctx.Done()
	return device.Stop()
}

// Read is one decoded value and when it was read.
type Read struct {
	Text string
	At   time.Time
}

func (r Read) String() string {
	return fmt.Sprintf("%s - %s", r.At.Format("15:04:05"), r.Text)
}

// History keeps the most recent reads, newest first.
type History struct {
	mu    sync.Mutex
	limit int
	reads []Read
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 50
	}
	return &History{limit: limit}
}

func (h *History) Add(r Read) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reads = append([]Read{r}, h.reads...)
	if len(h.reads) > h.limit {
		h.reads = h.reads[:h.limit]
	}
}

func (h *History) Reads() []Read {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Read(nil), h.reads...)
}

// Last returns the newest read.
func (h *History) Last() (Read, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.reads) == 0 {
		return Read{}, false
	}
	return h.reads[0], true
}

func normalize(line string) string {
	return strings.TrimSpace(strings.TrimRight(line, "\r\n"))
}
