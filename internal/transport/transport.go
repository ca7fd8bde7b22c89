// SPDX-License-Identifier: MIT
/*
Package transport delivers rendered frames to their consumers: a
websocket broadcast for browser renderers, a binary UDP feed (see the
udp subpackage) and the in-process terminal renderer. Sinks receive the
pipeline's frame synchronously inside Emit; anything held past that call
must be copied (visual.Frame.Clone).
*/
package transport

import (
	applog "vortex/internal/log"
	"vortex/internal/visual"
)

// FrameSink accepts one rendered frame per tick. Implementations must be
// safe to call from the pipeline goroutine and must not block it for
// longer than a frame budget; slow consumers drop frames instead.
type FrameSink interface {
	Emit(frame *visual.Frame) error
	Close() error
}

// LogSink logs frame statistics at debug level. Useful as a headless
// stand-in when no other sink is configured.
type LogSink struct{}

// NewLogSink creates a LogSink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Emit logs the frame's vital signs.
func (s *LogSink) Emit(frame *visual.Frame) error {
	applog.Debugf("frame %d: %d dots, loudness=%.2f, rotation=%.3f",
		frame.Seq, len(frame.Dots), frame.Loudness, frame.Rotation)
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error {
	return nil
}

var _ FrameSink = (*LogSink)(nil)
