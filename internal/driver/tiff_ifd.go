package driver

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// TIFF tag IDs. Grounded on the teacher's internal/cog/ifd.go constant
// block, extended with the strip/sample-format/nodata/colormap tags
// the teacher's read-only COG reader never needed.
const (
	tagImageWidth         = 256
	tagImageLength        = 257
	tagBitsPerSample      = 258
	tagCompression        = 259
	tagPhotometric        = 262
	tagStripOffsets       = 273
	tagSamplesPerPixel    = 277
	tagRowsPerStrip       = 278
	tagStripByteCounts    = 279
	tagPlanarConfig       = 284
	tagColorMap           = 320
	tagPredictor          = 317
	tagSampleFormat       = 339
	tagGDALNoData         = 42113
	tagModelPixelScale    = 33550
	tagModelTiepoint      = 33922
	tagGeoKeyDirectory    = 34735
	tagGeoDoubleParams    = 34736
	tagGeoAsciiParams     = 34737
)

// TIFF field data types.
const (
	dtByte     = 1
	dtASCII    = 2
	dtShort    = 3
	dtLong     = 4
	dtRational = 5
	dtSShort   = 8
	dtSLong    = 9
	dtFloat    = 11
	dtDouble   = 12
)

// Compression values supported for read; only none and LZW on write.
const (
	compNone    = 1
	compLZW     = 5
	compDeflate = 8
	compDeflate2 = 32946
)

const (
	photoWhiteIsZero = 0
	photoBlackIsZero = 1
	photoRGB         = 2
	photoPalette     = 3
)

// ifd is a single parsed TIFF Image File Directory. Only single-IFD,
// strip-organized (not tiled) files are supported — a generalization
// of the teacher's tile-oriented COG reader to a plain whole-image
// read+write contract (spec §4.K no longer needs tiled access).
type ifd struct {
	Width, Height   uint32
	BitsPerSample   []uint16
	SamplesPerPixel uint16
	SampleFormat    []uint16
	Compression     uint16
	Photometric     uint16
	Predictor       uint16
	StripOffsets    []uint64
	StripByteCounts []uint64
	RowsPerStrip    uint32
	ColorMap        []uint16

	NoData string

	ModelPixelScale []float64
	ModelTiepoint   []float64
	GeoKeys         []uint16
	GeoDoubleParams []float64
	GeoAsciiParams  string
}

type tiffEntry struct {
	Tag, DataType uint16
	Count         uint64
	Value         []byte
}

func dataTypeSize(dt uint16) int {
	switch dt {
	case dtByte, dtASCII:
		return 1
	case dtShort, dtSShort:
		return 2
	case dtLong, dtSLong, dtFloat:
		return 4
	case dtRational, dtDouble:
		return 8
	default:
		return 1
	}
}

// parseTIFF reads the byte order, magic, and first IFD of a TIFF
// stream, grounded on the teacher's parseTIFF/parseOneIFD.
func parseTIFF(r io.ReadSeeker) (ifd, binary.ByteOrder, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return ifd{}, nil, fmt.Errorf("reading TIFF header: %w", err)
	}
	var bo binary.ByteOrder
	switch string(header[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return ifd{}, nil, fmt.Errorf("invalid TIFF byte order %x", header[0:2])
	}
	if magic := bo.Uint16(header[2:4]); magic != 42 {
		return ifd{}, nil, fmt.Errorf("invalid TIFF magic %d (BigTIFF not supported)", magic)
	}
	offset := uint64(bo.Uint32(header[4:8]))

	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return ifd{}, nil, err
	}
	var cbuf [2]byte
	if _, err := io.ReadFull(r, cbuf[:]); err != nil {
		return ifd{}, nil, err
	}
	n := int(bo.Uint16(cbuf[:]))

	entries := make([]tiffEntry, n)
	for i := 0; i < n; i++ {
		var buf [12]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return ifd{}, nil, err
		}
		entries[i] = tiffEntry{
			Tag:      bo.Uint16(buf[0:2]),
			DataType: bo.Uint16(buf[2:4]),
			Count:    uint64(bo.Uint32(buf[4:8])),
			Value:    append([]byte(nil), buf[8:12]...),
		}
	}

	for i := range entries {
		if err := resolveEntry(r, bo, &entries[i]); err != nil {
			return ifd{}, nil, fmt.Errorf("resolving tag %d: %w", entries[i].Tag, err)
		}
	}

	return buildIFD(entries, bo), bo, nil
}

func resolveEntry(r io.ReadSeeker, bo binary.ByteOrder, e *tiffEntry) error {
	total := int(e.Count) * dataTypeSize(e.DataType)
	if total <= 4 {
		return nil
	}
	off := uint64(bo.Uint32(e.Value))
	if _, err := r.Seek(int64(off), io.SeekStart); err != nil {
		return err
	}
	data := make([]byte, total)
	if _, err := io.ReadFull(r, data); err != nil {
		return err
	}
	e.Value = data
	return nil
}

func buildIFD(entries []tiffEntry, bo binary.ByteOrder) ifd {
	var f ifd
	f.SamplesPerPixel = 1
	f.Photometric = photoBlackIsZero
	for _, e := range entries {
		switch e.Tag {
		case tagImageWidth:
			f.Width = getUint32(e, bo)
		case tagImageLength:
			f.Height = getUint32(e, bo)
		case tagBitsPerSample:
			f.BitsPerSample = getUint16Slice(e, bo)
		case tagSamplesPerPixel:
			f.SamplesPerPixel = getUint16Val(e, bo)
		case tagSampleFormat:
			f.SampleFormat = getUint16Slice(e, bo)
		case tagCompression:
			f.Compression = getUint16Val(e, bo)
		case tagPhotometric:
			f.Photometric = getUint16Val(e, bo)
		case tagPredictor:
			f.Predictor = getUint16Val(e, bo)
		case tagStripOffsets:
			f.StripOffsets = getUint64Slice(e, bo)
		case tagStripByteCounts:
			f.StripByteCounts = getUint64Slice(e, bo)
		case tagRowsPerStrip:
			f.RowsPerStrip = getUint32(e, bo)
		case tagColorMap:
			f.ColorMap = getUint16Slice(e, bo)
		case tagGDALNoData:
			f.NoData = string(trimNul(e.Value))
		case tagModelPixelScale:
			f.ModelPixelScale = getFloat64Slice(e, bo)
		case tagModelTiepoint:
			f.ModelTiepoint = getFloat64Slice(e, bo)
		case tagGeoKeyDirectory:
			f.GeoKeys = getUint16Slice(e, bo)
		case tagGeoDoubleParams:
			f.GeoDoubleParams = getFloat64Slice(e, bo)
		case tagGeoAsciiParams:
			f.GeoAsciiParams = string(trimNul(e.Value))
		}
	}
	if f.RowsPerStrip == 0 {
		f.RowsPerStrip = f.Height
	}
	return f
}

func trimNul(b []byte) []byte {
	if i := indexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func getUint16Val(e tiffEntry, bo binary.ByteOrder) uint16 {
	switch e.DataType {
	case dtShort:
		return bo.Uint16(e.Value)
	case dtLong:
		return uint16(bo.Uint32(e.Value))
	default:
		return uint16(e.Value[0])
	}
}

func getUint32(e tiffEntry, bo binary.ByteOrder) uint32 {
	switch e.DataType {
	case dtShort:
		return uint32(bo.Uint16(e.Value))
	case dtLong:
		return bo.Uint32(e.Value)
	default:
		return uint32(e.Value[0])
	}
}

func getUint16Slice(e tiffEntry, bo binary.ByteOrder) []uint16 {
	n := int(e.Count)
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = bo.Uint16(e.Value[i*2 : i*2+2])
	}
	return out
}

func getUint64Slice(e tiffEntry, bo binary.ByteOrder) []uint64 {
	n := int(e.Count)
	out := make([]uint64, n)
	switch e.DataType {
	case dtLong:
		for i := 0; i < n; i++ {
			out[i] = uint64(bo.Uint32(e.Value[i*4 : i*4+4]))
		}
	case dtShort:
		for i := 0; i < n; i++ {
			out[i] = uint64(bo.Uint16(e.Value[i*2 : i*2+2]))
		}
	}
	return out
}

func getFloat64Slice(e tiffEntry, bo binary.ByteOrder) []float64 {
	n := int(e.Count)
	out := make([]float64, n)
	size := dataTypeSize(e.DataType)
	for i := 0; i < n; i++ {
		off := i * size
		switch e.DataType {
		case dtDouble:
			out[i] = math.Float64frombits(bo.Uint64(e.Value[off : off+8]))
		case dtFloat:
			out[i] = float64(math.Float32frombits(bo.Uint32(e.Value[off : off+4])))
		}
	}
	return out
}
