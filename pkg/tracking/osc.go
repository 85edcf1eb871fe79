package tracking

import (
	"fmt"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"github.com/teslashibe/reactive-signs/pkg/geometry"
)

// OSC addresses spoken by the pose detector.
const (
	AddressDepth    = "/depth"    // w(i) h(i) blob(b) x(f) y(f) z(f) tracking(i)
	AddressPosition = "/position" // x(f) y(f) z(f) tracking(i)
)

// DecodePacket parses a binary OSC packet (message or bundle) into
// samples stamped with at. Unknown addresses inside a bundle are skipped;
// a lone unknown message returns ErrUnknownAddress.
func DecodePacket(data []byte, at time.Time) ([]Sample, error) {
	packet, err := osc.ParsePacket(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}

	switch p := packet.(type) {
	case *osc.Message:
		s, err := decodeMessage(p, at)
		if err != nil {
			return nil, err
		}
		return []Sample{s}, nil
	case *osc.Bundle:
		var out []Sample
		collectBundle(p, at, &out)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported packet %T", ErrMalformedPacket, packet)
	}
}

func collectBundle(b *osc.Bundle, at time.Time, out *[]Sample) {
	for _, m := range b.Messages {
		if s, err := decodeMessage(m, at); err == nil {
			*out = append(*out, s)
		}
	}
	for _, nested := range b.Bundles {
		collectBundle(nested, at, out)
	}
}

func decodeMessage(m *osc.Message, at time.Time) (Sample, error) {
	args := m.Arguments
	switch m.Address {
	case AddressDepth:
		if len(args) < 7 {
			return Sample{}, fmt.Errorf("%w: %s wants 7 arguments, got %d", ErrMalformedPacket, m.Address, len(args))
		}
		w, okW := toInt(args[0])
		h, okH := toInt(args[1])
		blob, okB := args[2].([]byte)
		if !okW || !okH || !okB {
			return Sample{}, fmt.Errorf("%w: %s depth header", ErrMalformedPacket, m.Address)
		}
		s, err := decodePosition(m.Address, args[3:7], at)
		if err != nil {
			return Sample{}, err
		}
		s.Depth = &geometry.Depth{Width: w, Height: h, Data: blob}
		return s, nil

	case AddressPosition:
		if len(args) < 4 {
			return Sample{}, fmt.Errorf("%w: %s wants 4 arguments, got %d", ErrMalformedPacket, m.Address, len(args))
		}
		return decodePosition(m.Address, args[:4], at)

	default:
		return Sample{}, fmt.Errorf("%w: %s", ErrUnknownAddress, m.Address)
	}
}

func decodePosition(addr string, args []interface{}, at time.Time) (Sample, error) {
	x, okX := toFloat(args[0])
	y, okY := toFloat(args[1])
	z, okZ := toFloat(args[2])
	tracking, okT := toBool(args[3])
	if !okX || !okY || !okZ || !okT {
		return Sample{}, fmt.Errorf("%w: %s position arguments", ErrMalformedPacket, addr)
	}
	return Sample{X: x, Y: y, Z: z, Tracking: tracking, At: at}, nil
}

// EncodeDepth builds the /depth message the detector sends.
func EncodeDepth(s Sample) ([]byte, error) {
	w, h := int32(0), int32(0)
	blob := []byte{0}
	if s.Depth != nil {
		w, h = int32(s.Depth.Width), int32(s.Depth.Height)
		if len(s.Depth.Data) > 0 {
			blob = s.Depth.Data
		}
	}
	tracking := int32(0)
	if s.Tracking {
		tracking = 1
	}
	msg := osc.NewMessage(AddressDepth, w, h, blob, float32(s.X), float32(s.Y), float32(s.Z), tracking)
	return msg.MarshalBinary()
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return int(n), true
	}
	return 0, false
}

func toBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int32:
		return b != 0, true
	case int64:
		return b != 0, true
	case float32:
		return b != 0, true
	}
	return false, false
}
