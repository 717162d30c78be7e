package world

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rasim/simcore/internal/model/core"
)

// ErrBadPack is returned for a truncated or malformed packed section.
var ErrBadPack = errors.New("malformed pack data")

// DecodePack turns the base64 text of a [MapPack] or [OverlayPack] section into raw bytes.
// The payload is a sequence of blocks, each a little-endian header of compressed and
// uncompressed sizes followed by LCW data.
func DecodePack(text string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("decoding pack: %w", err)
	}

	var out []byte
	for len(raw) > 0 {
		if len(raw) < 4 {
			return nil, ErrBadPack
		}
		comp := int(binary.LittleEndian.Uint16(raw[0:2]))
		uncomp := int(binary.LittleEndian.Uint16(raw[2:4]))
		raw = raw[4:]
		if comp > len(raw) {
			return nil, ErrBadPack
		}
		block, err := LCWDecode(raw[:comp], uncomp)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		raw = raw[comp:]
	}
	return out, nil
}

// LCWDecode expands one LCW ("format 80") block of at most size bytes.
func LCWDecode(src []byte, size int) ([]byte, error) {
	dst := make([]byte, 0, size)
	i := 0
	next := func() (byte, error) {
		if i >= len(src) {
			return 0, ErrBadPack
		}
		b := src[i]
		i++
		return b, nil
	}
	word := func() (int, error) {
		lo, err := next()
		if err != nil {
			return 0, err
		}
		hi, err := next()
		if err != nil {
			return 0, err
		}
		return int(lo) | int(hi)<<8, nil
	}
	copyFrom := func(pos, count int) error {
		if pos < 0 || pos >= len(dst) {
			return ErrBadPack
		}
		for n := 0; n < count; n++ {
			dst = append(dst, dst[pos+n])
		}
		return nil
	}

	for {
		cmd, err := next()
		if err != nil {
			return nil, err
		}

		switch {
		case cmd&0x80 == 0:
			// Short relative copy.
			lo, err := next()
			if err != nil {
				return nil, err
			}
			count := int(cmd>>4) + 3
			back := int(cmd&0x0F)<<8 | int(lo)
			if err := copyFrom(len(dst)-back, count); err != nil {
				return nil, err
			}

		case cmd == 0x80:
			return dst, nil

		case cmd&0xC0 == 0x80:
			count := int(cmd & 0x3F)
			if i+count > len(src) {
				return nil, ErrBadPack
			}
			dst = append(dst, src[i:i+count]...)
			i += count

		case cmd == 0xFE:
			count, err := word()
			if err != nil {
				return nil, err
			}
			v, err := next()
			if err != nil {
				return nil, err
			}
			for n := 0; n < count; n++ {
				dst = append(dst, v)
			}

		case cmd == 0xFF:
			count, err := word()
			if err != nil {
				return nil, err
			}
			pos, err := word()
			if err != nil {
				return nil, err
			}
			if err := copyFrom(pos, count); err != nil {
				return nil, err
			}

		default:
			count := int(cmd&0x3F) + 3
			pos, err := word()
			if err != nil {
				return nil, err
			}
			if err := copyFrom(pos, count); err != nil {
				return nil, err
			}
		}

		if len(dst) > size {
			return nil, ErrBadPack
		}
	}
}

// ReadBinary loads the template and icon planes decoded from [MapPack].
func (m *Map) ReadBinary(data []byte) error {
	if len(data) < core.MapCellTotal*3 {
		return fmt.Errorf("map pack holds %d bytes: %w", len(data), ErrBadPack)
	}
	icons := data[core.MapCellTotal*2:]
	for c := 0; c < core.MapCellTotal; c++ {
		tt := binary.LittleEndian.Uint16(data[c*2:])
		m.SetTemplate(core.Cell(c), tt, icons[c])
	}
	return nil
}

// ReadOverlayBinary loads the overlay plane decoded from [OverlayPack]; 0xFF is empty.
func (m *Map) ReadOverlayBinary(data []byte) error {
	if len(data) < core.MapCellTotal {
		return fmt.Errorf("overlay pack holds %d bytes: %w", len(data), ErrBadPack)
	}
	for c := 0; c < core.MapCellTotal; c++ {
		o := OverlayNone
		if data[c] != 0xFF && int(data[c]) < int(OverlayCount) {
			o = OverlayType(data[c])
		}
		if o != OverlayNone || m.Cells[c].Overlay != OverlayNone {
			m.SetOverlay(core.Cell(c), o, 0)
		}
	}
	return nil
}

const packBlockSize = 8192

// LCWEncode compresses src using only literal and fill commands.
func LCWEncode(src []byte) []byte {
	var out []byte
	var lit []byte
	flush := func() {
		for len(lit) > 0 {
			n := len(lit)
			if n > 0x3F {
				n = 0x3F
			}
			out = append(out, 0x80|byte(n))
			out = append(out, lit[:n]...)
			lit = lit[n:]
		}
	}

	for i := 0; i < len(src); {
		run := 1
		for i+run < len(src) && src[i+run] == src[i] && run < 0xFFFF {
			run++
		}
		if run >= 4 {
			flush()
			out = append(out, 0xFE, byte(run), byte(run>>8), src[i])
			i += run
			continue
		}
		lit = append(lit, src[i])
		i++
	}
	flush()
	return append(out, 0x80)
}

// EncodePack is the inverse of DecodePack.
func EncodePack(data []byte) string {
	var raw []byte
	for len(data) > 0 {
		n := len(data)
		if n > packBlockSize {
			n = packBlockSize
		}
		comp := LCWEncode(data[:n])
		raw = binary.LittleEndian.AppendUint16(raw, uint16(len(comp)))
		raw = binary.LittleEndian.AppendUint16(raw, uint16(n))
		raw = append(raw, comp...)
		data = data[n:]
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// WriteBinary returns the template and icon planes in [MapPack] layout.
func (m *Map) WriteBinary() []byte {
	out := make([]byte, core.MapCellTotal*3)
	for c := 0; c < core.MapCellTotal; c++ {
		binary.LittleEndian.PutUint16(out[c*2:], m.Cells[c].TType)
		out[core.MapCellTotal*2+c] = m.Cells[c].TIcon
	}
	return out
}
