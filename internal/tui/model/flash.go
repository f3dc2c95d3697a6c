package model

import (
	"sync"
	"time"
)

// FlashLevel is the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// Flash durations per level.
const (
	infoTTL = 4 * time.Second
	warnTTL = 8 * time.Second
	errTTL  = 10 * time.Second
)

// FlashMessage is a transient notification shown under the page.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// Flash holds the latest notification. Watch delivers every new message;
// a slow reader misses intermediate ones.
type Flash struct {
	mu      sync.RWMutex
	current FlashMessage
	watchCh chan FlashMessage
	now     func() time.Time
}

// NewFlash creates an empty flash model.
func NewFlash() *Flash {
	return &Flash{
		watchCh: make(chan FlashMessage, 8),
		now:     time.Now,
	}
}

// Info shows an informational message.
func (f *Flash) Info(msg string) { f.set(msg, FlashInfo, infoTTL) }

// Warn shows a warning.
func (f *Flash) Warn(msg string) { f.set(msg, FlashWarn, warnTTL) }

// Err shows an error message.
func (f *Flash) Err(msg string) { f.set(msg, FlashErr, errTTL) }

// Clear drops the current message.
func (f *Flash) Clear() {
	f.mu.Lock()
	f.current = FlashMessage{}
	f.mu.Unlock()
}

func (f *Flash) set(msg string, level FlashLevel, ttl time.Duration) {
	fm := FlashMessage{Text: msg, Level: level, Expires: f.now().Add(ttl)}
	f.mu.Lock()
	f.current = fm
	f.mu.Unlock()
	select {
	case f.watchCh <- fm:
	default:
	}
}

// Current returns the live message, or nil once it expired.
func (f *Flash) Current() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current.Text == "" || f.now().After(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// Watch returns the notification channel.
func (f *Flash) Watch() <-chan FlashMessage {
	return f.watchCh
}
