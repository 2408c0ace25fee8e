package commfail

import (
	"context"
	"sync"
	"time"

	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

// DefaultDuration is the comm-fail timeout used when a driver does not
// override it (spec.md §4.5).
const DefaultDuration = 3600 * time.Second

// Hooks are the upper-driver callbacks the watchdog invokes on
// transition, per spec.md §4.5.
type Hooks struct {
	CommunicationFailed    func(eui types.EUI64)
	CommunicationRestored  func(eui types.EUI64)
}

// Watchdog is the per-device comm-fail timer. A duration of 0 disables it
// entirely: Arm becomes a no-op and no device is ever marked failed.
type Watchdog struct {
	mu       sync.Mutex
	timers   map[types.EUI64]*time.Timer
	failed   map[types.EUI64]bool
	duration time.Duration
	st       store.Store
	hooks    Hooks
}

// New constructs a Watchdog. duration <= 0 disables the watchdog.
func New(st store.Store, duration time.Duration, hooks Hooks) *Watchdog {
	return &Watchdog{
		timers:   make(map[types.EUI64]*time.Timer),
		failed:   make(map[types.EUI64]bool),
		duration: duration,
		st:       st,
		hooks:    hooks,
	}
}

// Arm starts the watchdog for eui in the not-failed state. It is called
// once comm-fail monitoring begins for a newly paired device
// (spec.md §4.2 step 11).
func (w *Watchdog) Arm(eui types.EUI64) {
	if w.duration <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked(eui)
}

// ArmInFailedState re-arms the watchdog for a device that was already
// marked in comm-fail when the process last shut down (spec.md §4.5, "On
// process startup, devices already marked in comm-fail are re-armed in
// the fail state").
func (w *Watchdog) ArmInFailedState(eui types.EUI64) {
	if w.duration <= 0 {
		return
	}
	w.mu.Lock()
	w.failed[eui] = true
	w.resetLocked(eui)
	w.mu.Unlock()
}

// Received restarts the timer for eui on every received frame. If the
// device was in comm-fail, it transitions back to healthy and invokes
// CommunicationRestored.
func (w *Watchdog) Received(ctx context.Context, eui types.EUI64) {
	if w.duration <= 0 {
		return
	}
	w.mu.Lock()
	wasFailed := w.failed[eui]
	w.failed[eui] = false
	w.resetLocked(eui)
	w.mu.Unlock()

	if wasFailed {
		w.setCommFailure(ctx, eui, false)
		if w.hooks.CommunicationRestored != nil {
			w.hooks.CommunicationRestored(eui)
		}
	}
}

// Disarm stops and removes the timer for eui, used on device removal.
func (w *Watchdog) Disarm(eui types.EUI64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[eui]; ok {
		t.Stop()
		delete(w.timers, eui)
	}
	delete(w.failed, eui)
}

// IsFailed reports whether eui is currently in comm-fail.
func (w *Watchdog) IsFailed(eui types.EUI64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failed[eui]
}

func (w *Watchdog) resetLocked(eui types.EUI64) {
	if t, ok := w.timers[eui]; ok {
		t.Stop()
	}
	w.timers[eui] = time.AfterFunc(w.duration, func() { w.expire(eui) })
}

func (w *Watchdog) expire(eui types.EUI64) {
	w.mu.Lock()
	w.failed[eui] = true
	w.mu.Unlock()

	ctx := context.Background()
	w.setCommFailure(ctx, eui, true)
	if w.hooks.CommunicationFailed != nil {
		w.hooks.CommunicationFailed(eui)
	}
}

func (w *Watchdog) setCommFailure(ctx context.Context, eui types.EUI64, failed bool) {
	_ = w.st.SetResource(ctx, eui.String(), types.ResourceCommFailure, types.FormatBool(failed), store.ChangeOriginDriver)
}
