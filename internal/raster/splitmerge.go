package raster

import (
	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/pixtype"
)

// Split breaks im into one single-channel Image per channel, in
// order. SplitChannels(chans) instead extracts only the named channel
// indices, in the order given (a channel index may repeat).
func (im *Image) Split() ([]*Image, error) {
	chans := make([]int, im.Channels())
	for i := range chans {
		chans[i] = i
	}
	return im.SplitChannels(chans)
}

// SplitChannels extracts the named channel indices into separate
// single-channel owning images, in the order given.
func (im *Image) SplitChannels(chans []int) ([]*Image, error) {
	out := make([]*Image, len(chans))
	for i, c := range chans {
		if c < 0 || c >= im.Channels() {
			return nil, fuserr.Invalidf("channel index %d out of range [0,%d)", c, im.Channels())
		}
		single, err := New(im.Width(), im.Height(), pixtype.GetFullType(im.BaseType(), 1))
		if err != nil {
			return nil, err
		}
		for y := 0; y < im.Height(); y++ {
			for x := 0; x < im.Width(); x++ {
				single.setF64(x, y, 0, im.getF64(x, y, c))
			}
		}
		out[i] = single
	}
	return out, nil
}

// Merge combines same-size, same-base-type single-channel images into
// one multi-channel image, in the order given. Fails if any input has
// more than one channel, a mismatched size, or a mismatched base type.
func Merge(parts []*Image) (*Image, error) {
	if len(parts) == 0 {
		return nil, fuserr.Invalidf("merge requires at least one channel")
	}
	w, h, base := parts[0].Width(), parts[0].Height(), parts[0].BaseType()
	for _, p := range parts {
		if p.Channels() != 1 {
			return nil, fuserr.Typef("merge inputs must be single-channel, got %d channels", p.Channels())
		}
		if p.Width() != w || p.Height() != h {
			return nil, fuserr.Sizef("merge size mismatch: %dx%d vs %dx%d", p.Width(), p.Height(), w, h)
		}
		if p.BaseType() != base {
			return nil, fuserr.Typef("merge base type mismatch: %s vs %s", p.BaseType(), base)
		}
	}
	out, err := New(w, h, pixtype.GetFullType(base, len(parts)))
	if err != nil {
		return nil, err
	}
	for c, p := range parts {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.setF64(x, y, c, p.getF64(x, y, 0))
			}
		}
	}
	return out, nil
}
