package raster

import (
	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/pixtype"
)

// broadcastChannels resolves the broadcasting rule of spec §4.D: if
// one operand has 1 channel and the other has C>1, the 1-channel
// operand is replicated to C channels.
func broadcastChannels(ac, bc int) (int, error) {
	switch {
	case ac == bc:
		return ac, nil
	case ac == 1:
		return bc, nil
	case bc == 1:
		return ac, nil
	default:
		return 0, fuserr.Typef("channel counts %d and %d are not broadcast-compatible", ac, bc)
	}
}

// maskValueAt reads the effective mask value (0 or 255) for pixel
// (x,y) at output channel c, handling a single- or C-channel uint8
// mask. A nil mask is treated as "all valid".
func maskValueAt(mask *Image, x, y, c int) bool {
	if mask == nil {
		return true
	}
	mc := c
	if mask.Channels() == 1 {
		mc = 0
	}
	return mask.getF64(x, y, mc) != 0
}

func checkMask(mask *Image) error {
	if mask == nil {
		return nil
	}
	if mask.BaseType().String() != "uint8" {
		return fuserr.Typef("mask must be uint8, got %s", mask.BaseType())
	}
	return nil
}

// pointwiseImage applies op(a,b) pixelwise between two images of equal
// size, with channel broadcasting, writing results into a new image of
// a's base type. mask, if non-nil, restricts writes: unmasked pixels
// keep a's original value.
func pointwiseImage(a, b *Image, mask *Image, op func(x, y float64) float64) (*Image, error) {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return nil, fuserr.Sizef("size mismatch: %dx%d vs %dx%d", a.Width(), a.Height(), b.Width(), b.Height())
	}
	if a.BaseType() != b.BaseType() {
		return nil, fuserr.Typef("base type mismatch: %s vs %s", a.BaseType(), b.BaseType())
	}
	ch, err := broadcastChannels(a.Channels(), b.Channels())
	if err != nil {
		return nil, err
	}
	if err := checkMask(mask); err != nil {
		return nil, err
	}
	out, err := New(a.Width(), a.Height(), pixtype.GetFullType(a.BaseType(), ch))
	if err != nil {
		return nil, err
	}
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			for c := 0; c < ch; c++ {
				ac := c
				if a.Channels() == 1 {
					ac = 0
				}
				av := a.getF64(x, y, ac)
				if !maskValueAt(mask, x, y, c) {
					out.setF64(x, y, c, av)
					continue
				}
				bc := c
				if b.Channels() == 1 {
					bc = 0
				}
				bv := b.getF64(x, y, bc)
				out.setF64(x, y, c, op(av, bv))
			}
		}
	}
	return out, nil
}

// pointwiseScalar applies op(a, scalar) pixelwise, where the scalar
// list has either 1 entry or a.Channels() entries.
func pointwiseScalar(a *Image, vals []float64, mask *Image, op func(x, y float64) float64) (*Image, error) {
	if len(vals) != 1 && len(vals) != a.Channels() {
		return nil, fuserr.Invalidf("scalar list must have 1 or %d entries, got %d", a.Channels(), len(vals))
	}
	if err := checkMask(mask); err != nil {
		return nil, err
	}
	out, err := New(a.Width(), a.Height(), a.ftype)
	if err != nil {
		return nil, err
	}
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			for c := 0; c < a.Channels(); c++ {
				av := a.getF64(x, y, c)
				if !maskValueAt(mask, x, y, c) {
					out.setF64(x, y, c, av)
					continue
				}
				sv := vals[0]
				if len(vals) > 1 {
					sv = vals[c]
				}
				out.setF64(x, y, c, op(av, sv))
			}
		}
	}
	return out, nil
}

func add(x, y float64) float64      { return x + y }
func subtract(x, y float64) float64 { return x - y }
func multiply(x, y float64) float64 { return x * y }
func absDiff(x, y float64) float64 {
	if x > y {
		return x - y
	}
	return y - x
}
func minOp(x, y float64) float64 {
	if x < y {
		return x
	}
	return y
}
func maxOp(x, y float64) float64 {
	if x > y {
		return x
	}
	return y
}

// Add returns a + b, pointwise with channel broadcasting.
func (a *Image) Add(b *Image) (*Image, error) { return pointwiseImage(a, b, nil, add) }

// AddMasked is the masked Image-Image overload of Add.
func (a *Image) AddMasked(b *Image, mask *Image) (*Image, error) { return pointwiseImage(a, b, mask, add) }

// AddScalar returns a + vals, pointwise with scalar broadcasting.
func (a *Image) AddScalar(vals []float64) (*Image, error) { return pointwiseScalar(a, vals, nil, add) }

// AddScalarMasked is the masked scalar overload of Add.
func (a *Image) AddScalarMasked(vals []float64, mask *Image) (*Image, error) {
	return pointwiseScalar(a, vals, mask, add)
}

// Subtract returns a - b (not symmetric: the receiver is always the
// minuend, regardless of how the caller names its arguments).
func (a *Image) Subtract(b *Image) (*Image, error) { return pointwiseImage(a, b, nil, subtract) }

func (a *Image) SubtractMasked(b *Image, mask *Image) (*Image, error) {
	return pointwiseImage(a, b, mask, subtract)
}

func (a *Image) SubtractScalar(vals []float64) (*Image, error) {
	return pointwiseScalar(a, vals, nil, subtract)
}

func (a *Image) SubtractScalarMasked(vals []float64, mask *Image) (*Image, error) {
	return pointwiseScalar(a, vals, mask, subtract)
}

// Multiply returns a * b, pointwise.
func (a *Image) Multiply(b *Image) (*Image, error) { return pointwiseImage(a, b, nil, multiply) }

func (a *Image) MultiplyMasked(b *Image, mask *Image) (*Image, error) {
	return pointwiseImage(a, b, mask, multiply)
}

func (a *Image) MultiplyScalar(vals []float64) (*Image, error) {
	return pointwiseScalar(a, vals, nil, multiply)
}

func (a *Image) MultiplyScalarMasked(vals []float64, mask *Image) (*Image, error) {
	return pointwiseScalar(a, vals, mask, multiply)
}

// Divide returns a / b, pointwise (not symmetric, see Subtract).
func (a *Image) Divide(b *Image) (*Image, error) {
	return pointwiseImage(a, b, nil, func(x, y float64) float64 {
		if y == 0 {
			return 0
		}
		return x / y
	})
}

func (a *Image) DivideMasked(b *Image, mask *Image) (*Image, error) {
	return pointwiseImage(a, b, mask, func(x, y float64) float64 {
		if y == 0 {
			return 0
		}
		return x / y
	})
}

// DivideScalar divides a by the scalar list; a zero scalar raises
// invalid_argument_error (spec: "divide-by-zero in the scalar form
// raises invalid_argument_error").
func (a *Image) DivideScalar(vals []float64) (*Image, error) {
	for _, v := range vals {
		if v == 0 {
			return nil, fuserr.Invalidf("divide by zero scalar")
		}
	}
	return pointwiseScalar(a, vals, nil, func(x, y float64) float64 { return x / y })
}

func (a *Image) DivideScalarMasked(vals []float64, mask *Image) (*Image, error) {
	for _, v := range vals {
		if v == 0 {
			return nil, fuserr.Invalidf("divide by zero scalar")
		}
	}
	return pointwiseScalar(a, vals, mask, func(x, y float64) float64 { return x / y })
}

// AbsDiff returns |a - b|, pointwise; commutative (a.AbsDiff(b) ==
// b.AbsDiff(a)).
func (a *Image) AbsDiff(b *Image) (*Image, error) { return pointwiseImage(a, b, nil, absDiff) }

// Abs returns |a|, pointwise.
func (a *Image) Abs() (*Image, error) {
	out, err := New(a.Width(), a.Height(), a.ftype)
	if err != nil {
		return nil, err
	}
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			for c := 0; c < a.Channels(); c++ {
				v := a.getF64(x, y, c)
				if v < 0 {
					v = -v
				}
				out.setF64(x, y, c, v)
			}
		}
	}
	return out, nil
}

// Minimum/Maximum: pointwise with the same broadcasting/masking rules
// as Add.
func (a *Image) Minimum(b *Image) (*Image, error) { return pointwiseImage(a, b, nil, minOp) }
func (a *Image) Maximum(b *Image) (*Image, error) { return pointwiseImage(a, b, nil, maxOp) }

func (a *Image) MinimumMasked(b *Image, mask *Image) (*Image, error) {
	return pointwiseImage(a, b, mask, minOp)
}
func (a *Image) MaximumMasked(b *Image, mask *Image) (*Image, error) {
	return pointwiseImage(a, b, mask, maxOp)
}

// MinimumScalar/MaximumScalar: pointwise against a per-channel scalar
// list.
func (a *Image) MinimumScalar(vals []float64) (*Image, error) {
	return pointwiseScalar(a, vals, nil, minOp)
}
func (a *Image) MaximumScalar(vals []float64) (*Image, error) {
	return pointwiseScalar(a, vals, nil, maxOp)
}
