package component

import (
	"context"
	"sync"

	"github.com/kbukum/statekit/state"
)

// Stream is a broadcast of state snapshots that replays the latest value to
// every new subscriber.
//
// Each subscriber sees values one at a time and never an older value after
// a newer one. A value superseded by a concurrent publish before it reached
// a subscriber may be skipped. Subscribers may update or drive the
// component they observe: a value published from inside a callback is
// delivered once that callback returns.
type Stream interface {
	// Subscribe registers fn and calls it with the latest value before
	// returning. The returned function cancels the subscription.
	Subscribe(fn func(state.Info)) (cancel func())

	// Latest returns the most recently published value.
	Latest() state.Info

	// Watch delivers published values on a channel until ctx is done. Slow
	// readers only ever see the newest value.
	Watch(ctx context.Context) <-chan state.Info
}

type delivery struct {
	seq  uint64
	info state.Info
}

// subscriber is a mailbox drained by whichever goroutine finds it idle.
type subscriber struct {
	fn func(state.Info)

	mu        sync.Mutex
	queue     []delivery
	last      uint64
	busy      bool
	cancelled bool
}

func (sub *subscriber) deliver(d delivery) {
	sub.mu.Lock()
	if sub.cancelled || d.seq <= sub.last {
		sub.mu.Unlock()
		return
	}
	sub.last = d.seq
	sub.queue = append(sub.queue, d)
	if sub.busy {
		sub.mu.Unlock()
		return
	}
	sub.busy = true
	finished := false
	defer func() {
		// Only reached with finished unset when fn panicked.
		if !finished {
			sub.mu.Lock()
			sub.busy = false
			sub.queue = nil
			sub.mu.Unlock()
		}
	}()

	for len(sub.queue) > 0 && !sub.cancelled {
		next := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()
		sub.fn(next.info)
		sub.mu.Lock()
	}
	sub.queue = nil
	sub.busy = false
	finished = true
	sub.mu.Unlock()
}

func (sub *subscriber) cancel() {
	sub.mu.Lock()
	sub.cancelled = true
	sub.queue = nil
	sub.mu.Unlock()
}

// stream is the Stream published by Base.
type stream struct {
	mu     sync.Mutex
	latest state.Info
	seq    uint64
	subs   map[uint64]*subscriber
	nextID uint64

	// While holds is positive deliveries are parked in held. Lifecycle runs
	// hold the stream so callbacks never run inside the run itself.
	holds int
	held  []delivery
}

func newStream(initial state.Info) *stream {
	return &stream{
		latest: initial,
		seq:    1,
		subs:   make(map[uint64]*subscriber),
	}
}

// Latest implements Stream.
func (s *stream) Latest() state.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Subscribe implements Stream.
func (s *stream) Subscribe(fn func(state.Info)) func() {
	sub := &subscriber{fn: fn}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	replay := delivery{seq: s.seq, info: s.latest}
	s.mu.Unlock()

	sub.deliver(replay)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			sub.cancel()
		})
	}
}

// store makes v the latest value and returns the function delivering it.
// Stores are ordered by the caller; deliveries may run concurrently.
func (s *stream) store(v state.Info) (deliver func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.latest = v
	d := delivery{seq: s.seq, info: v}
	if s.holds > 0 {
		s.held = append(s.held, d)
		return func() {}
	}
	subs := s.snapshotLocked()
	return func() {
		for _, sub := range subs {
			sub.deliver(d)
		}
	}
}

// publish stores v and delivers it to every idle subscriber before returning.
func (s *stream) publish(v state.Info) {
	s.store(v)()
}

// hold parks deliveries until a matching release followed by flush.
func (s *stream) hold() {
	s.mu.Lock()
	s.holds++
	s.mu.Unlock()
}

func (s *stream) release() {
	s.mu.Lock()
	if s.holds > 0 {
		s.holds--
	}
	s.mu.Unlock()
}

// flush delivers the values parked while the stream was held.
func (s *stream) flush() {
	s.mu.Lock()
	if s.holds > 0 || len(s.held) == 0 {
		s.mu.Unlock()
		return
	}
	held := s.held
	s.held = nil
	subs := s.snapshotLocked()
	s.mu.Unlock()

	for _, d := range held {
		for _, sub := range subs {
			sub.deliver(d)
		}
	}
}

func (s *stream) snapshotLocked() []*subscriber {
	subs := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	return subs
}

// subscribers returns the number of active subscriptions.
func (s *stream) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Watch implements Stream.
func (s *stream) Watch(ctx context.Context) <-chan state.Info {
	ch := make(chan state.Info, 1)

	var mu sync.Mutex
	closed := false
	cancel := s.Subscribe(func(v state.Info) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	})

	go func() {
		<-ctx.Done()
		cancel()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}
