// Package saver implements a coalescing save dispatcher: it turns
// "this Source is dirty" into at most one queued save per Source,
// dispatched on the event loop at a below-normal priority so pending
// application work drains first, and forces any still-pending saves
// to run at shutdown.
package saver

import (
	"github.com/houmingc/qutim/internal/confdebug"
	"github.com/houmingc/qutim/loopevent"
	"github.com/houmingc/qutim/source"
)

// Saver posts save events onto one event loop. New returns an
// independent Saver on every call; nothing here enforces a single
// Saver per process.
type Saver struct {
	loop loopevent.EventLoop
}

func New(loop loopevent.EventLoop) *Saver {
	return &Saver{loop: loop}
}

// RequestSave posts a save event for src if it is dirty and doesn't
// already have one in flight — the "queued" bit is the dedup token.
func (s *Saver) RequestSave(src *source.Source) {
	if !src.IsDirty() || src.IsQueued() {
		return
	}
	src.MarkQueued()
	s.loop.Post(loopevent.PriorityBelowNormal, func() {
		if err := src.Sync(); err != nil {
			// The dirty bit is left set by a failed Sync, so the next
			// Cursor.Sync will re-request a save.
			confdebug.Logf("saver: background save of %s failed: %v", src, err)
		}
		src.ClearQueued()
	})
}

// Shutdown forces dispatch of any remaining save events so no dirty
// Source is lost.
func (s *Saver) Shutdown() {
	s.loop.Drain()
}
