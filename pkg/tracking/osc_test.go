package tracking

import (
	"errors"
	"math"
	"testing"

	"github.com/hypebeast/go-osc/osc"

	"github.com/teslashibe/reactive-signs/pkg/geometry"
)

func TestDecodePacket_Depth(t *testing.T) {
	data, err := EncodeDepth(Sample{
		X: 0.25, Y: 0.75, Z: 0.5, Tracking: true,
		Depth: &geometry.Depth{Width: 160, Height: 120, Data: []byte{1, 2, 3}},
	})
	if err != nil {
		t.Fatalf("EncodeDepth failed: %v", err)
	}

	samples, err := DecodePacket(data, t0)
	if err != nil {
		t.Fatalf("DecodePacket failed: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(samples))
	}
	s := samples[0]
	if math.Abs(s.X-0.25) > 1e-6 || math.Abs(s.Y-0.75) > 1e-6 || math.Abs(s.Z-0.5) > 1e-6 {
		t.Errorf("Expected (0.25,0.75,0.5), got (%v,%v,%v)", s.X, s.Y, s.Z)
	}
	if !s.Tracking {
		t.Error("Expected tracking=true")
	}
	if s.Depth == nil || s.Depth.Width != 160 || s.Depth.Height != 120 || len(s.Depth.Data) != 3 {
		t.Errorf("Expected 160x120 depth with 3 bytes, got %+v", s.Depth)
	}
	if !s.At.Equal(t0) {
		t.Errorf("Expected timestamp to be stamped, got %v", s.At)
	}
}

func TestDecodePacket_PositionWithBoolFlag(t *testing.T) {
	msg := osc.NewMessage(AddressPosition, float32(0.1), float32(0.2), float32(0.3), false)
	data, err := msg.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	samples, err := DecodePacket(data, t0)
	if err != nil {
		t.Fatalf("DecodePacket failed: %v", err)
	}
	if samples[0].Tracking {
		t.Error("Expected tracking=false")
	}
	if samples[0].Depth != nil {
		t.Error("Expected no depth for /position")
	}
}

func TestDecodePacket_UnknownAddress(t *testing.T) {
	data, err := osc.NewMessage("/hands", float32(1)).MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	_, err = DecodePacket(data, t0)
	if !errors.Is(err, ErrUnknownAddress) {
		t.Errorf("Expected ErrUnknownAddress, got %v", err)
	}
}

func TestDecodePacket_ShortDepth(t *testing.T) {
	data, err := osc.NewMessage(AddressDepth, int32(160), int32(120)).MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	_, err = DecodePacket(data, t0)
	if !errors.Is(err, ErrMalformedPacket) {
		t.Errorf("Expected ErrMalformedPacket, got %v", err)
	}
}

func TestDecodePacket_Garbage(t *testing.T) {
	_, err := DecodePacket([]byte{0xff, 0x00, 0x01}, t0)
	if !errors.Is(err, ErrMalformedPacket) {
		t.Errorf("Expected ErrMalformedPacket, got %v", err)
	}
}
