package graphrag

import "testing"

func TestLogStreamDeliversToSubscribers(t *testing.T) {
	s := NewLogStream()
	ch, cancel := s.Subscribe(4)
	defer cancel()

	s.Publish("one")
	s.Publish("two")

	if got := <-ch; got != "one" {
		t.Errorf("first line = %q, want %q", got, "one")
	}
	if got := <-ch; got != "two" {
		t.Errorf("second line = %q, want %q", got, "two")
	}
}

func TestLogStreamDropsWhenSubscriberFull(t *testing.T) {
	s := NewLogStream()
	ch, cancel := s.Subscribe(1)
	defer cancel()

	// Second publish must not block even though nothing is draining.
	s.Publish("kept")
	s.Publish("dropped")

	if got := <-ch; got != "kept" {
		t.Errorf("line = %q, want %q", got, "kept")
	}
	select {
	case line, ok := <-ch:
		if ok {
			t.Errorf("unexpected extra line %q", line)
		}
	default:
	}
}

func TestLogStreamCancelClosesChannelOnce(t *testing.T) {
	s := NewLogStream()
	ch, cancel := s.Subscribe(1)
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
	// Publishing to a stream with no subscribers is a no-op.
	s.Publish("into the void")
}

func TestLogStreamIndependentSubscribers(t *testing.T) {
	s := NewLogStream()
	a, cancelA := s.Subscribe(2)
	b, cancelB := s.Subscribe(2)
	defer cancelB()

	s.Publish("first")
	cancelA()
	s.Publish("second")

	if got := <-a; got != "first" {
		t.Errorf("a received %q, want %q", got, "first")
	}
	if got := <-b; got != "first" {
		t.Errorf("b received %q, want %q", got, "first")
	}
	if got := <-b; got != "second" {
		t.Errorf("b received %q, want %q", got, "second")
	}
}
