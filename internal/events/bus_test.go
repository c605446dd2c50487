package events

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/yourusername/tilewm/internal/types"
)

func stateChanged(from, to types.WindowState) WmEvent {
	return WindowStateChanged{WindowID: uuid.New(), Old: from, New: to}
}

func TestPublishOrder(t *testing.T) {
	bus := NewBus(16)
	sub := bus.Subscribe(Filter{})

	published := bus.Publish(
		stateChanged(types.StateTiling, types.StateFloating),
		FocusChanged{ContainerID: uuid.New()},
		stateChanged(types.StateFloating, types.StateTiling),
	)

	for i, want := range published {
		got := <-sub.C()
		if got.Seq != want.Seq {
			t.Errorf("event %d seq = %d, want %d", i, got.Seq, want.Seq)
		}
		if i > 0 && got.Seq <= published[i-1].Seq {
			t.Errorf("event %d seq %d not increasing", i, got.Seq)
		}
	}
}

func TestFilter(t *testing.T) {
	bus := NewBus(16)
	sub := bus.Subscribe(NewFilter(KindFocusChanged))

	bus.Publish(stateChanged(types.StateTiling, types.StateFloating), FocusChanged{ContainerID: uuid.New()})

	got := <-sub.C()
	if got.Event.Kind() != KindFocusChanged {
		t.Errorf("Kind = %s, want %s", got.Event.Kind(), KindFocusChanged)
	}
	select {
	case extra := <-sub.C():
		t.Errorf("unexpected event %s", extra.Event.Kind())
	default:
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter([]string{"window_state_changed"})
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	if !f.Match(KindWindowStateChanged) || f.Match(KindFocusChanged) {
		t.Error("filter should match only window_state_changed")
	}
	if _, err := ParseFilter([]string{"nope"}); err == nil {
		t.Error("ParseFilter(nope) should fail")
	}
	if !(Filter{}).Match(KindConfigReloaded) {
		t.Error("zero filter should match everything")
	}
}

func TestOverflowDropsSubscriber(t *testing.T) {
	bus := NewBus(1)
	slow := bus.Subscribe(Filter{})
	fast := bus.Subscribe(Filter{})

	bus.Publish(ConfigReloaded{})
	<-fast.C()
	bus.Publish(ConfigReloaded{})

	// slow still holds the first event and has no room for the second.
	if _, ok := <-slow.C(); !ok {
		t.Fatal("buffered event should still be readable")
	}
	if _, ok := <-slow.C(); ok {
		t.Fatal("overflowed subscription should be closed")
	}
	if !errors.Is(slow.Err(), ErrOverflow) {
		t.Errorf("Err() = %v, want ErrOverflow", slow.Err())
	}
	if got := <-fast.C(); got.Seq != 2 {
		t.Errorf("fast subscriber seq = %d, want 2", got.Seq)
	}
	if bus.Len() != 1 {
		t.Errorf("Len() = %d, want 1", bus.Len())
	}
}

func TestCloseSubscription(t *testing.T) {
	bus := NewBus(4)
	sub := bus.Subscribe(Filter{})
	sub.Close()
	sub.Close()

	if _, ok := <-sub.C(); ok {
		t.Error("closed subscription channel should be closed")
	}
	if sub.Err() != nil {
		t.Errorf("Err() = %v, want nil after Close", sub.Err())
	}

	bus.Publish(ConfigReloaded{})
	if bus.Len() != 0 {
		t.Errorf("Len() = %d, want 0", bus.Len())
	}
}

func TestBusClose(t *testing.T) {
	bus := NewBus(4)
	sub := bus.Subscribe(Filter{})
	bus.Close()

	if _, ok := <-sub.C(); ok {
		t.Error("subscription should be closed with the bus")
	}
	if !errors.Is(sub.Err(), ErrBusClosed) {
		t.Errorf("Err() = %v, want ErrBusClosed", sub.Err())
	}

	late := bus.Subscribe(Filter{})
	if _, ok := <-late.C(); ok {
		t.Error("subscribing to a closed bus should yield a closed channel")
	}
}

func TestReplace(t *testing.T) {
	bus := NewBus(4)
	old := bus.Subscribe(Filter{})
	bus.Publish(ConfigReloaded{Path: "before"})

	next := bus.Replace(old, NewFilter(KindConfigReloaded))
	bus.Publish(ConfigReloaded{Path: "after"})

	var fromOld []uint64
	for p := range old.C() {
		fromOld = append(fromOld, p.Seq)
	}
	if len(fromOld) != 1 || fromOld[0] != 1 {
		t.Errorf("old subscription got seqs %v, want [1]", fromOld)
	}
	if old.Err() != nil {
		t.Errorf("old Err() = %v, want nil", old.Err())
	}

	select {
	case p := <-next.C():
		if p.Seq != 2 {
			t.Errorf("new subscription first seq = %d, want 2", p.Seq)
		}
	default:
		t.Fatal("new subscription got nothing")
	}
	if bus.Len() != 1 {
		t.Errorf("Len() = %d, want 1", bus.Len())
	}

	if first := bus.Replace(nil, Filter{}); bus.Len() != 2 || first == nil {
		t.Errorf("Replace(nil) should add a subscriber, Len() = %d", bus.Len())
	}
}
