// Package pixtype defines the closed set of pixel element base types
// and channel counts used throughout the image-fusion toolkit, and a
// runtime dispatch table over the base-type enum.
package pixtype

import (
	"fmt"
	"math"

	"github.com/fusionkit/imgfusion/internal/fuserr"
)

// BaseType is the pixel element's numeric type with channel count
// dropped. The zero value is not a valid base type.
type BaseType uint8

const (
	Uint8 BaseType = iota + 1
	Int8
	Uint16
	Int16
	Int32
	Float32
	Float64
)

var allBaseTypes = []BaseType{Uint8, Int8, Uint16, Int16, Int32, Float32, Float64}

// All returns every base type in the closed enumeration, in declaration
// order.
func All() []BaseType {
	out := make([]BaseType, len(allBaseTypes))
	copy(out, allBaseTypes)
	return out
}

func (b BaseType) String() string {
	switch b {
	case Uint8:
		return "uint8"
	case Int8:
		return "int8"
	case Uint16:
		return "uint16"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("BaseType(%d)", uint8(b))
	}
}

// ByteSize returns the size in bytes of one sample of this type.
func (b BaseType) ByteSize() int {
	switch b {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// IsIntegerType reports whether b is one of the integer base types.
func (b BaseType) IsIntegerType() bool {
	switch b {
	case Uint8, Int8, Uint16, Int16, Int32:
		return true
	default:
		return false
	}
}

// IsSignedType reports whether b's numeric range includes negatives.
func (b BaseType) IsSignedType() bool {
	switch b {
	case Int8, Int16, Int32, Float32, Float64:
		return true
	default:
		return false
	}
}

// RangeMin and RangeMax give the representable numeric range used by
// interval mask synthesis (spec §4.A invariant: base type uniquely
// determines this range).
func (b BaseType) RangeMin() float64 {
	switch b {
	case Uint8, Uint16:
		return 0
	case Int8:
		return -128
	case Int16:
		return -32768
	case Int32:
		return -2147483648
	case Float32, Float64:
		return -math.MaxFloat64
	default:
		return 0
	}
}

func (b BaseType) RangeMax() float64 {
	switch b {
	case Uint8:
		return 255
	case Int8:
		return 127
	case Uint16:
		return 65535
	case Int16:
		return 32767
	case Int32:
		return 2147483647
	case Float32, Float64:
		return math.MaxFloat64
	default:
		return 0
	}
}

// Valid reports whether b is a member of the closed enumeration.
func (b BaseType) Valid() bool {
	for _, v := range allBaseTypes {
		if v == b {
			return true
		}
	}
	return false
}

// FullType is a (base type, channel count) pair.
type FullType struct {
	Base     BaseType
	Channels int
}

func (f FullType) String() string {
	return fmt.Sprintf("%sx%d", f.Base, f.Channels)
}

// Valid reports whether f names a well-formed full type: a valid base
// type and a positive channel count.
func (f FullType) Valid() bool {
	return f.Base.Valid() && f.Channels > 0
}

// ToBaseType drops the channel count.
func (f FullType) ToBaseType() BaseType { return f.Base }

// GetChannels returns the channel count.
func (f FullType) GetChannels() int { return f.Channels }

// GetFullType builds a FullType from a base type and channel count.
func GetFullType(b BaseType, channels int) FullType {
	return FullType{Base: b, Channels: channels}
}

// Funcs is a table of type-specialized function values, one per base
// type, used by Dispatch. Re-architected per spec §9 away from
// template/functor dispatch toward a runtime table keyed by the base
// type enum.
type Funcs struct {
	Uint8   func() error
	Int8    func() error
	Uint16  func() error
	Int16   func() error
	Int32   func() error
	Float32 func() error
	Float64 func() error
}

// Dispatch runs the Funcs entry matching b. allowed, if non-nil,
// restricts which base types the caller supports; a disallowed or
// unimplemented entry raises an image_type_error.
func Dispatch(b BaseType, fns Funcs, allowed ...BaseType) error {
	if len(allowed) > 0 {
		ok := false
		for _, a := range allowed {
			if a == b {
				ok = true
				break
			}
		}
		if !ok {
			return fuserr.Typef("base type %s not allowed for this operation", b)
		}
	}
	var fn func() error
	switch b {
	case Uint8:
		fn = fns.Uint8
	case Int8:
		fn = fns.Int8
	case Uint16:
		fn = fns.Uint16
	case Int16:
		fn = fns.Int16
	case Int32:
		fn = fns.Int32
	case Float32:
		fn = fns.Float32
	case Float64:
		fn = fns.Float64
	default:
		return fuserr.Typef("unknown base type %d", uint8(b))
	}
	if fn == nil {
		return fuserr.Typef("base type %s not implemented for this operation", b)
	}
	return fn()
}
