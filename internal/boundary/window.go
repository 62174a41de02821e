package boundary

import (
	"net/url"
	"sync"
)

// WindowManager focuses or opens application windows.
type WindowManager interface {
	Focus(target string) bool
	Open(target string) error
}

// Windows tracks the open application windows of a device.
type Windows struct {
	mu      sync.Mutex
	open    []string
	focused string
}

func NewWindows(open ...string) *Windows {
	return &Windows{open: open}
}

// Focus brings forward a window showing the same path as target.
func (w *Windows) Focus(target string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	want := pathOf(target)
	for i, o := range w.open {
		if pathOf(o) == want {
			w.open[i] = target
			w.focused = target
			return true
		}
	}

	return false
}

func (w *Windows) Open(target string) error {
	if _, err := url.Parse(target); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.open = append(w.open, target)
	w.focused = target

	return nil
}

func (w *Windows) Focused() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.focused
}

// URLs returns the addresses of the open windows.
func (w *Windows) URLs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]string(nil), w.open...)
}

func pathOf(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	return u.Path
}
