package habits

import "sync"

// Event describes a completion change on one recurrence.
type Event struct {
	RecurrenceID string
	// Days are the day keys whose state changed, ascending.
	Days   []string
	Marked bool
}

// Listener receives change events for the recurrence it subscribed to.
type Listener func(Event)

// Observers is a publish/subscribe registry keyed by recurrence id.
type Observers struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]Listener
}

func NewObservers() *Observers {
	return &Observers{subs: make(map[string]map[int]Listener)}
}

// Subscribe registers fn for recurrenceID. The returned function removes
// it and may be called more than once.
func (o *Observers) Subscribe(recurrenceID string, fn Listener) (unsubscribe func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.next
	o.next++
	if o.subs[recurrenceID] == nil {
		o.subs[recurrenceID] = make(map[int]Listener)
	}
	o.subs[recurrenceID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subs[recurrenceID], id)
			if len(o.subs[recurrenceID]) == 0 {
				delete(o.subs, recurrenceID)
			}
		})
	}
}

// Notify calls every listener of ev.RecurrenceID. Listeners run outside
// the registry lock, so they may subscribe or unsubscribe.
func (o *Observers) Notify(ev Event) {
	o.mu.Lock()
	listeners := make([]Listener, 0, len(o.subs[ev.RecurrenceID]))
	for _, fn := range o.subs[ev.RecurrenceID] {
		listeners = append(listeners, fn)
	}
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// Len returns the number of listeners for recurrenceID.
func (o *Observers) Len(recurrenceID string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs[recurrenceID])
}
