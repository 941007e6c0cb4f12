// Package strings decodes the strings collection's variable-width entries
// into typed values (spec.md §3 "Strings entry", §4.6 "Value conversion").
// The stored representation is a tagged union in spirit — one "string"
// entry type holding roughly ten kinds — resolved once per property via
// its declared StoredValueType (spec.md §9: model this as a union indexed
// by stored type, not duck typing).
package strings

import (
	"fmt"
	"math"
	"net/netip"
	"strconv"

	"golang.org/x/text/encoding/charmap"

	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// StoredType enumerates the representations a Strings entry may hold
// (spec.md §3: "text, int32, float32, int16, IPv4/IPv6 byte array, WKB").
type StoredType uint8

const (
	TypeString StoredType = iota
	TypeInt32
	TypeFloat32
	TypeInt16Azimuth
	TypeInt16Declination
	TypeByteArrayIP
	TypeWKB
	TypeBoolean
	TypeInt16
	TypeByteArray
)

// azimuthScale/declinationScale implement spec.md §4.6's fixed conversion
// table: int16 azimuth -> value*180/INT16_MAX, declination -> value*90/INT16_MAX.
const (
	azimuthScale     = 180.0 / float64(math.MaxInt16)
	declinationScale = 90.0 / float64(math.MaxInt16)
)

// GeometryFormatter renders WKB bytes as text. spec.md §9 treats WKB->WKT
// as a plug-in, not core; the default formatter below is a minimal
// built-in stand-in (see DESIGN.md — no WKT grammar library exists
// anywhere in the pack).
type GeometryFormatter interface {
	Format(wkb []byte) (string, error)
}

// HexGeometryFormatter is the built-in default: a hex dump of the raw WKB
// bytes, good enough to round-trip but not a real WKT printer.
type HexGeometryFormatter struct{}

func (HexGeometryFormatter) Format(wkb []byte) (string, error) {
	return fmt.Sprintf("%x", wkb), nil
}

// Decode converts raw stored bytes of the given type into their
// spec.md §4.6 text/weight-ready representation.
func Decode(storedType StoredType, raw []byte, geom GeometryFormatter) (string, error) {
	switch storedType {
	case TypeString:
		return decodeText(raw)
	case TypeInt32:
		if len(raw) < 4 {
			return "", ipierr.New(ipierr.UnsupportedStoredValueType, "int32 value too short")
		}
		v := int32(le32(raw))
		return strconv.FormatInt(int64(v), 10), nil
	case TypeFloat32:
		if len(raw) < 4 {
			return "", ipierr.New(ipierr.UnsupportedStoredValueType, "float32 value too short")
		}
		v := math.Float32frombits(le32(raw))
		return strconv.FormatFloat(float64(v), 'g', -1, 64), nil
	case TypeInt16Azimuth:
		v, err := readInt16(raw)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(float64(v)*azimuthScale, 'g', -1, 64), nil
	case TypeInt16Declination:
		v, err := readInt16(raw)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(float64(v)*declinationScale, 'g', -1, 64), nil
	case TypeInt16:
		v, err := readInt16(raw)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(int64(v), 10), nil
	case TypeByteArrayIP:
		return decodeIP(raw)
	case TypeWKB:
		if geom == nil {
			geom = HexGeometryFormatter{}
		}
		return geom.Format(raw)
	case TypeBoolean:
		if len(raw) < 1 {
			return "", ipierr.New(ipierr.UnsupportedStoredValueType, "boolean value too short")
		}
		if raw[0] != 0 {
			return "True", nil
		}
		return "False", nil
	case TypeByteArray:
		return fmt.Sprintf("%x", raw), nil
	default:
		return "", ipierr.New(ipierr.UnsupportedStoredValueType, "unrecognised stored value type")
	}
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func readInt16(raw []byte) (int16, error) {
	if len(raw) < 2 {
		return 0, ipierr.New(ipierr.UnsupportedStoredValueType, "int16 value too short")
	}
	return int16(uint16(raw[0]) | uint16(raw[1])<<8), nil
}

// decodeText treats raw as NUL-terminated Windows-1252 text, matching the
// single-byte legacy encoding hivekit falls back to for extended-range
// names (the ASCII fast path is identical in Windows-1252 and UTF-8).
func decodeText(raw []byte) (string, error) {
	end := len(raw)
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}
	raw = raw[:end]
	if isASCII(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", ipierr.Wrap(ipierr.EncodingError, "decoding windows-1252 stored text", err)
	}
	return string(decoded), nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// decodeIP renders a 4- or 16-byte address as text (spec.md §4.6: "byte
// array IP -> text").
func decodeIP(raw []byte) (string, error) {
	switch len(raw) {
	case 4:
		return netip.AddrFrom4([4]byte(raw)).String(), nil
	case 16:
		return netip.AddrFrom16([16]byte(raw)).String(), nil
	default:
		return "", ipierr.New(ipierr.UnsupportedStoredValueType, "ip byte array must be 4 or 16 bytes")
	}
}
