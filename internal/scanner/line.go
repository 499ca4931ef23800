package scanner

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// LineDevice reads one code per line, which is how keyboard-wedge scanners
// and piped input deliver reads. Blank lines are ignored.
type LineDevice struct {
	mu      sync.Mutex
	lines   chan string
	readErr error
	active  bool
	stop    chan struct{}
	done    chan struct{}
	errs    chan error
}

// NewLineDevice starts consuming r in the background. A line read while the
// device is stopped waits for the next Start.
func NewLineDevice(r io.Reader) *LineDevice {
	d := &LineDevice{lines: make(chan string)}
	go d.pump(r)
	return d
}

func (d *LineDevice) pump(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if text := normalize(sc.Text()); text != "" {
			d.lines <- text
		}
	}
	d.mu.Lock()
	d.readErr = sc.Err()
	if d.readErr == nil {
		d.readErr = ErrClosed
	}
	d.mu.Unlock()
	close(d.lines)
}

func (d *LineDevice) Start(ctx context.Context, onDecode func(string)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active {
		return ErrAlreadyStarted
	}
	if d.readErr != nil {
		return d.readErr
	}
	d.active = true
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.errs = make(chan error, 1)
	go d.deliver(ctx, d.stop, d.done, d.errs, onDecode)
	return nil
}

// Err reports why the current session ended early: ErrClosed at end of
// input, or the read error.
func (d *LineDevice) Err() <-chan error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errs
}

func (d *LineDevice) deliver(ctx context.Context, stop, done chan struct{}, errs chan<- error, onDecode func(string)) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case text, ok := <-d.lines:
			if !ok {
				d.mu.Lock()
				err := d.readErr
				d.mu.Unlock()
				errs <- err
				return
			}
			onDecode(text)
		}
	}
}

func (d *LineDevice) Stop() error {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return nil
	}
	d.active = false
	close(d.stop)
	done := d.done
	d.mu.Unlock()
	<-done
	return nil
}
