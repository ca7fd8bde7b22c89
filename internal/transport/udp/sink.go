// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"time"

	applog "vortex/internal/log"
	"vortex/internal/visual"
)

/*
Frame packet structure (BigEndian):

+------------------------------------------------------------------+
| Field        | Type    | Size (Bytes) | Description              |
|--------------|---------|--------------|--------------------------|
| Sequence     | uint32  | 4            | Monotonically increasing |
| Timestamp    | int64   | 8            | Nanoseconds since epoch  |
| Rotation     | float32 | 4            | Radians                  |
| Loudness     | float32 | 4            | Smoothed loudness        |
| Trail Alpha  | float32 | 4            | Renderer fade per frame  |
| Dot Count    | uint16  | 2            | Number of dots (N)       |
| Dots         | N * 19  | 19 each      | See below                |
+------------------------------------------------------------------+

Each dot: X float32, Y float32, Size float32, R/G/B uint8, Alpha float32.
*/

// Sink packs each frame into the binary layout above and sends it as a
// single datagram. Buffers are reused across frames.
type Sink struct {
	sender      *Sender
	sequenceNum uint32
	packet      *bytes.Buffer
}

// NewSink creates a frame sink over an established Sender.
func NewSink(sender *Sender) *Sink {
	return &Sink{
		sender: sender,
		packet: new(bytes.Buffer),
	}
}

// Emit packs and sends one frame. Packing happens synchronously so the
// pipeline may reuse the frame buffer immediately after Emit returns.
func (s *Sink) Emit(frame *visual.Frame) error {
	s.sequenceNum++
	s.packet.Reset()

	var err error
	write := func(v any) {
		if err == nil {
			err = binary.Write(s.packet, binary.BigEndian, v)
		}
	}

	write(s.sequenceNum)
	write(time.Now().UnixNano())
	write(float32(frame.Rotation))
	write(float32(frame.Loudness))
	write(float32(frame.TrailAlpha))
	write(uint16(len(frame.Dots)))
	for i := range frame.Dots {
		d := &frame.Dots[i]
		write(float32(d.X))
		write(float32(d.Y))
		write(float32(d.Size))
		write(d.R)
		write(d.G)
		write(d.B)
		write(float32(d.Alpha))
	}
	if err != nil {
		applog.Errorf("udp: error packing frame %d: %v", s.sequenceNum, err)
		return err
	}

	if err := s.sender.Send(s.packet.Bytes()); err != nil {
		applog.Debugf("udp: send failed for frame %d: %v", s.sequenceNum, err)
		return err
	}
	return nil
}

// Close closes the underlying sender.
func (s *Sink) Close() error {
	return s.sender.Close()
}
