package graphrag

import "sync"

// LogStream fans engine log lines out to subscribers. The engine has no
// structured progress API; free-text lines are all observers get. Publish
// never blocks: a subscriber that falls behind loses lines, which is fine
// because progress markers are best-effort.
type LogStream struct {
	mu   sync.Mutex
	next int
	subs map[int]chan string
}

func NewLogStream() *LogStream {
	return &LogStream{subs: make(map[int]chan string)}
}

// Subscribe registers a buffered subscriber. The returned cancel func
// removes the subscription and closes the channel; it is idempotent.
func (s *LogStream) Subscribe(buffer int) (<-chan string, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan string, buffer)
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

func (s *LogStream) Publish(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- line:
		default:
		}
	}
}
