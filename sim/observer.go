// Observer contract and registry. Observers receive immutable snapshots
// after ticks; they can never affect simulation determinism. Errors from
// observers are logged and do not block the campaign.

package sim

import (
	"github.com/sirupsen/logrus"
)

// ObserverConfig controls how often an observer is notified.
type ObserverConfig struct {
	// Frequency notifies every N ticks (1 = every tick, 30 = roughly monthly).
	Frequency uint32
	// NotifyOnMonthStart always notifies on the 1st of the month,
	// regardless of Frequency.
	NotifyOnMonthStart bool
}

// DefaultObserverConfig notifies every tick.
func DefaultObserverConfig() ObserverConfig {
	return ObserverConfig{Frequency: 1, NotifyOnMonthStart: true}
}

// Observer receives campaign state after ticks.
//
// Implementations must be safe for use from the single driver goroutine;
// OnShutdown is called exactly once after the final tick.
type Observer interface {
	// OnTick is called after each gated tick for observers that do not
	// need per-country inputs.
	OnTick(snapshot *Snapshot) error

	// OnTickWithInputs is called instead of OnTick when NeedsInputs
	// returns true, carrying the per-country decisions of this tick.
	OnTickWithInputs(snapshot *Snapshot, inputs []PlayerInputs) error

	// NeedsInputs reports whether the driver must collect and pass
	// per-country PlayerInputs to this observer.
	NeedsInputs() bool

	// Name is a human-readable identifier for logging.
	Name() string

	// Config returns the notification gating for this observer.
	Config() ObserverConfig

	// OnShutdown flushes and finalizes. Errors are handled internally;
	// from the driver's perspective shutdown cannot fail.
	OnShutdown()
}

// Registry fans ticks out to a heterogeneous set of observers.
type Registry struct {
	observers []Observer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an observer.
func (r *Registry) Register(o Observer) {
	logrus.Infof("registered observer: %s", o.Name())
	r.observers = append(r.observers, o)
}

// Len returns the number of registered observers.
func (r *Registry) Len() int {
	return len(r.observers)
}

// NeedsInputs reports whether any registered observer needs per-country
// inputs. The driver uses this to skip action-space collection entirely
// when nobody will consume it.
func (r *Registry) NeedsInputs() bool {
	for _, o := range r.observers {
		if o.NeedsInputs() {
			return true
		}
	}
	return false
}

// Notify delivers a snapshot without inputs to all gated observers.
func (r *Registry) Notify(snapshot *Snapshot) {
	r.NotifyWithInputs(snapshot, nil)
}

// NotifyWithInputs delivers a snapshot (and inputs, for observers that
// want them) to every observer whose gating matches this tick. Observer
// errors are logged, never propagated.
func (r *Registry) NotifyWithInputs(snapshot *Snapshot, inputs []PlayerInputs) {
	for _, o := range r.observers {
		cfg := o.Config()

		gated := cfg.Frequency > 0 && snapshot.Tick%uint64(cfg.Frequency) == 0
		if !gated && cfg.NotifyOnMonthStart && snapshot.Date.MonthStart() {
			gated = true
		}
		if !gated {
			continue
		}

		var err error
		if o.NeedsInputs() {
			err = o.OnTickWithInputs(snapshot, inputs)
		} else {
			err = o.OnTick(snapshot)
		}
		if err != nil {
			logrus.Warnf("observer %q error at tick %d: %v", o.Name(), snapshot.Tick, err)
		}
	}
}

// Shutdown notifies every observer exactly once, in registration order.
func (r *Registry) Shutdown() {
	for _, o := range r.observers {
		o.OnShutdown()
	}
}
