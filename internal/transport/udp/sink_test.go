// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"math"
	"net"
	"testing"
	"time"

	"vortex/internal/visual"
)

func TestSink_PacketLayout(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer listener.Close()

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	sink := NewSink(sender)
	defer sink.Close()

	frame := &visual.Frame{
		Seq:        9,
		Rotation:   1.5,
		Loudness:   42.5,
		TrailAlpha: 0.06,
		Dots: []visual.Dot{
			{X: 10, Y: -20, Size: 3, R: 255, G: 128, B: 0, Alpha: 0.5},
			{X: -1, Y: 2, Size: 1, R: 1, G: 2, B: 3, Alpha: 1},
		},
	}
	if err := sink.Emit(frame); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	buf := make([]byte, 2048)
	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}

	const headerLen = 4 + 8 + 4 + 4 + 4 + 2
	const dotLen = 4 + 4 + 4 + 3 + 4
	if want := headerLen + 2*dotLen; n != want {
		t.Fatalf("packet length = %d, expected %d", n, want)
	}

	if seq := binary.BigEndian.Uint32(buf[0:4]); seq != 1 {
		t.Errorf("sequence = %d, expected 1", seq)
	}
	rotation := math.Float32frombits(binary.BigEndian.Uint32(buf[12:16]))
	if rotation != 1.5 {
		t.Errorf("rotation = %g, expected 1.5", rotation)
	}
	loudness := math.Float32frombits(binary.BigEndian.Uint32(buf[16:20]))
	if loudness != 42.5 {
		t.Errorf("loudness = %g, expected 42.5", loudness)
	}
	if count := binary.BigEndian.Uint16(buf[24:26]); count != 2 {
		t.Errorf("dot count = %d, expected 2", count)
	}

	x := math.Float32frombits(binary.BigEndian.Uint32(buf[headerLen : headerLen+4]))
	if x != 10 {
		t.Errorf("dot 0 x = %g, expected 10", x)
	}
	if r := buf[headerLen+12]; r != 255 {
		t.Errorf("dot 0 r = %d, expected 255", r)
	}
}

func TestSender_ClosedSendFails(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer listener.Close()

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := sender.Send([]byte{1}); err == nil {
		t.Error("Send after Close succeeded, expected error")
	}
}

func TestNewSender_BadAddress(t *testing.T) {
	if _, err := NewSender("not-an-address"); err == nil {
		t.Error("expected error for unresolvable address")
	}
}
