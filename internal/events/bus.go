// Package events notifies dependent code whenever a new access token becomes
// available.
package events

import (
	"reflect"
	"sync"

	"github.com/gogotex/gogotex/backend/auth-widget/pkg/logger"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/metrics"
)

var log = logger.Named("events")

// Listener receives every newly acquired access token.
type Listener interface {
	TokenChanged(accessToken string)
}

// FuncListener gives a function a stable identity so it can be registered and
// removed like any other listener.
type FuncListener struct {
	fn func(accessToken string)
}

// Func wraps fn. Keep the returned pointer to unsubscribe later; wrapping the
// same function twice yields two distinct listeners.
func Func(fn func(accessToken string)) *FuncListener {
	return &FuncListener{fn: fn}
}

func (f *FuncListener) TokenChanged(accessToken string) {
	if f != nil && f.fn != nil {
		f.fn(accessToken)
	}
}

// Bus is an ordered registry of listeners.
type Bus struct {
	mu        sync.Mutex
	listeners []Listener
}

func NewBus() *Bus { return &Bus{} }

// Subscribe registers l. Registering a listener that is already present is a
// no-op and returns false. Listeners are compared with ==, so non-comparable
// implementations (maps, slices, funcs) are rejected.
func (b *Bus) Subscribe(l Listener) bool {
	if l == nil {
		return false
	}
	if !reflect.TypeOf(l).Comparable() {
		log.Warnf("refusing non-comparable listener %T; wrap it with events.Func", l)
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexLocked(l) >= 0 {
		return false
	}
	b.listeners = append(b.listeners, l)
	return true
}

// Unsubscribe removes l and reports whether it was registered.
func (b *Bus) Unsubscribe(l Listener) bool {
	if l == nil || !reflect.TypeOf(l).Comparable() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(l)
	if i < 0 {
		return false
	}
	b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
	return true
}

// Len returns the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func (b *Bus) indexLocked(l Listener) int {
	for i, cur := range b.listeners {
		if cur == l {
			return i
		}
	}
	return -1
}

// Publish calls every listener synchronously in registration order. A
// panicking listener is logged and skipped; the rest still run.
func (b *Bus) Publish(accessToken string) {
	b.mu.Lock()
	snapshot := make([]Listener, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, l := range snapshot {
		notify(l, accessToken)
	}
}

func notify(l Listener, accessToken string) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ListenerPanics.Inc()
			log.Errorf("listener %T panicked: %v", l, r)
		}
	}()
	l.TokenChanged(accessToken)
}
