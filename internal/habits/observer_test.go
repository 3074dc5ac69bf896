package habits

import "testing"

func TestObserversSubscribeDuringNotify(t *testing.T) {
	o := NewObservers()

	calls := 0
	var unsubscribe func()
	unsubscribe = o.Subscribe("r1", func(Event) {
		calls++
		unsubscribe()
		o.Subscribe("r1", func(Event) {})
	})

	o.Notify(Event{RecurrenceID: "r1"})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if got := o.Len("r1"); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestObserversLen(t *testing.T) {
	o := NewObservers()
	a := o.Subscribe("r1", func(Event) {})
	o.Subscribe("r1", func(Event) {})

	if got := o.Len("r1"); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	a()
	if got := o.Len("r1"); got != 1 {
		t.Errorf("Len() after unsubscribe = %d, want 1", got)
	}
	if got := o.Len("none"); got != 0 {
		t.Errorf("Len(none) = %d", got)
	}
}
