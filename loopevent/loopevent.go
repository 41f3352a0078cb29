// Package loopevent defines the single contract the rest of this
// module asks of its host's event loop: post a function to run later
// on the loop's own thread, and let a caller force outstanding work
// to run to completion. The only suspension point callers ever see is
// the delivery of a queued task back to this loop; nothing here
// blocks waiting on the caller. A self-driving default implementation
// is included for callers who aren't already embedded in some other
// cooperative loop (a GUI toolkit's, say).
package loopevent

import "sort"

// Priority below PriorityNormal is dispatched after any
// PriorityNormal work queued ahead of it — used by the Saver so
// pending application work drains first.
const (
	PriorityNormal      = 0
	PriorityBelowNormal = -2
)

// EventLoop posts a function to run later, on the loop's own thread,
// and lets a caller force outstanding work to run to completion.
type EventLoop interface {
	// Post enqueues fn to run later. Tasks with a higher priority
	// value run before lower ones; ties are FIFO.
	Post(priority int, fn func())
	// Drain synchronously runs every queued function — including any
	// further functions those functions Post — until the queue is
	// empty.
	Drain()
}

type task struct {
	priority int
	fn       func()
}

// Loop is a minimal single-goroutine cooperative event loop: a
// priority-ordered task queue drained by one dispatcher goroutine.
type Loop struct {
	postCh   chan task
	drainReq chan chan struct{}

	tasks []task
}

var _ EventLoop = (*Loop)(nil)

func NewLoop() *Loop {
	l := &Loop{
		postCh:   make(chan task, 64),
		drainReq: make(chan chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) Post(priority int, fn func()) {
	l.postCh <- task{priority: priority, fn: fn}
}

func (l *Loop) Drain() {
	ack := make(chan struct{})
	l.drainReq <- ack
	<-ack
}

func (l *Loop) run() {
	for {
		select {
		case t := <-l.postCh:
			l.enqueue(t)
			l.runReady()
		case ack := <-l.drainReq:
			l.runReady()
			close(ack)
		}
	}
}

func (l *Loop) enqueue(t task) {
	l.tasks = append(l.tasks, t)
	sort.SliceStable(l.tasks, func(i, j int) bool {
		return l.tasks[i].priority > l.tasks[j].priority
	})
}

// runReady drains l.postCh non-blockingly between each dispatch so a
// task that Posts more work during Drain sees that work picked up
// before Drain returns.
func (l *Loop) runReady() {
	for {
		l.drainPostCh()
		if len(l.tasks) == 0 {
			return
		}
		t := l.tasks[0]
		l.tasks = l.tasks[1:]
		t.fn()
	}
}

func (l *Loop) drainPostCh() {
	for {
		select {
		case t := <-l.postCh:
			l.enqueue(t)
		default:
			return
		}
	}
}
