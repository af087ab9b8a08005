package raster

import (
	"math"

	"github.com/fusionkit/imgfusion/internal/pixtype"
)

// offset returns the byte offset of sample (x, y, c) in view
// coordinates within the underlying buffer.
func (im *Image) offset(x, y, c int) int {
	ax, ay := im.crop.x+x, im.crop.y+y
	return ay*im.buf.rowStride() + ax*im.buf.pixelStride() + c*im.buf.base.ByteSize()
}

// getF64 reads sample (x, y, c) as a float64, regardless of the
// underlying base type.
func (im *Image) getF64(x, y, c int) float64 {
	off := im.offset(x, y, c)
	d := im.buf.data
	switch im.ftype.Base.ByteSize() {
	case 1:
		if im.isSigned() {
			return float64(int8(d[off]))
		}
		return float64(d[off])
	case 2:
		v := uint16(d[off]) | uint16(d[off+1])<<8
		if im.isSigned() {
			return float64(int16(v))
		}
		return float64(v)
	case 4:
		bits := uint32(d[off]) | uint32(d[off+1])<<8 | uint32(d[off+2])<<16 | uint32(d[off+3])<<24
		if im.ftype.Base.String() == "float32" {
			return float64(math.Float32frombits(bits))
		}
		return float64(int32(bits))
	case 8:
		bits := uint64(0)
		for i := 0; i < 8; i++ {
			bits |= uint64(d[off+i]) << (8 * i)
		}
		return math.Float64frombits(bits)
	default:
		return 0
	}
}

func (im *Image) isSigned() bool { return im.ftype.Base.IsSignedType() && im.ftype.Base.IsIntegerType() }

// setF64 writes v into sample (x, y, c), saturating to the base
// type's representable range for integer types (OpenCV-style
// saturation, per spec's ConvertTo/arithmetic contract) and rounding
// integer destinations to the nearest integer, halves away from zero.
func (im *Image) setF64(x, y, c int, v float64) {
	off := im.offset(x, y, c)
	d := im.buf.data
	b := im.ftype.Base

	if b.IsIntegerType() {
		v = saturate(v, b)
	}

	switch b.ByteSize() {
	case 1:
		if im.isSigned() {
			d[off] = byte(int8(v))
		} else {
			d[off] = byte(uint8(v))
		}
	case 2:
		var u uint16
		if im.isSigned() {
			u = uint16(int16(v))
		} else {
			u = uint16(v)
		}
		d[off] = byte(u)
		d[off+1] = byte(u >> 8)
	case 4:
		var bits uint32
		if b.String() == "float32" {
			bits = math.Float32bits(float32(v))
		} else {
			bits = uint32(int32(v))
		}
		d[off] = byte(bits)
		d[off+1] = byte(bits >> 8)
		d[off+2] = byte(bits >> 16)
		d[off+3] = byte(bits >> 24)
	case 8:
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			d[off+i] = byte(bits >> (8 * i))
		}
	}
}

// saturate rounds v to the nearest integer (0.5 rounds away from
// zero, matching the teacher's/OpenCV's saturate_cast convention) and
// clamps it into b's representable range.
func saturate(v float64, b pixtype.BaseType) float64 {
	if v >= 0 {
		v = math.Floor(v + 0.5)
	} else {
		v = math.Ceil(v - 0.5)
	}
	if v < b.RangeMin() {
		v = b.RangeMin()
	}
	if v > b.RangeMax() {
		v = b.RangeMax()
	}
	return v
}

// GetPixel reads channel c of pixel (x, y) as a float64.
func (im *Image) GetPixel(x, y, c int) float64 { return im.getF64(x, y, c) }

// SetPixel writes channel c of pixel (x, y); integer destinations
// saturate per OpenCV convention.
func (im *Image) SetPixel(x, y, c int, v float64) { im.setF64(x, y, c, v) }
