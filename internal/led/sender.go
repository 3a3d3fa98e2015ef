package led

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/pkg/term"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/effects"
)

// Sender owns the serial port exclusively and drains a single-slot inbox: if
// a new frame arrives while one is queued, the queued one is replaced. This
// bounds in-flight latency to at most one frame regardless of how slow the
// downstream microcontroller is.
type Sender struct {
	port *term.Term

	mu      sync.Mutex
	pending *effects.Frame
	hasNew  bool
	wake    chan struct{}

	frameID atomic.Uint32

	done    chan struct{}
	stopped chan struct{}
	closed  sync.Once
}

// Open opens the serial port at path, sets the given baud rate (a baud of
// zero or less leaves the port's current speed unchanged) and starts the
// sender worker goroutine.
func Open(path string, baud int) (*Sender, error) {
	t, err := term.Open(path, term.RawMode)
	if err != nil {
		return nil, err
	}
	if baud > 0 {
		if err := t.SetSpeed(baud); err != nil {
			t.Close()
			return nil, err
		}
	}

	s := &Sender{
		port:    t,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Submit replaces the pending frame. Fire-and-forget: it never blocks on the
// serial write and never queues more than one frame.
func (s *Sender) Submit(f effects.Frame) {
	s.mu.Lock()
	s.pending = &f
	s.hasNew = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Sender) take() (effects.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasNew {
		return effects.Frame{}, false
	}
	f := *s.pending
	s.hasNew = false
	return f, true
}

func (s *Sender) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
			f, ok := s.take()
			if !ok {
				continue
			}
			s.write(f)
		}
	}
}

func (s *Sender) write(f effects.Frame) {
	id := byte(s.frameID.Add(1) % 256)
	buf := Encode(f, id)
	if _, err := s.port.Write(buf); err != nil {
		log.Printf("[led] serial write failed: %v", err)
	}
}

// Close stops the sender worker, flushes one all-zero clear frame and
// releases the serial port. The worker is drained first so the clear
// frame never interleaves with an in-flight write. Safe to call multiple
// times.
func (s *Sender) Close() {
	s.closed.Do(func() {
		close(s.done)
		<-s.stopped
		s.write(clearFrame())
		s.port.Close()
	})
}
