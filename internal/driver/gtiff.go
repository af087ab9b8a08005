package driver

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// inflate decompresses a zlib-wrapped Deflate stream (TIFF Compression
// tags 8 and 32946 both use zlib framing in practice).
func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// GTiffDriver reads and writes single-IFD, strip-organized GeoTIFF
// across the full pixel-type lattice (uint8/int8/uint16/int16/int32/
// float32/float64 x N channels), generalized from the teacher's
// internal/cog tiled, read-only, RGBA-only COG reader. Writes are
// always LZW-compressed per spec §4.D/§6.
type GTiffDriver struct{}

func NewGTiffDriver() *GTiffDriver { return &GTiffDriver{} }

func (GTiffDriver) Name() string             { return "GTiff" }
func (GTiffDriver) LongName() string         { return "GeoTIFF" }
func (GTiffDriver) DefaultExtension() string { return "tif" }
func (GTiffDriver) Extensions() []string     { return []string{"tif", "tiff"} }

func (GTiffDriver) Probe(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var hdr [4]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return false
	}
	return (hdr[0] == 'I' && hdr[1] == 'I' && hdr[2] == 42) || (hdr[0] == 'M' && hdr[1] == 'M' && hdr[3] == 42)
}

func (d GTiffDriver) Decode(path string, opts DecodeOptions) (*raster.Image, geo.Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, geo.Info{}, fuserr.Wrap(fuserr.Runtime, path, err)
	}

	f, bo, err := parseTIFF(bytes.NewReader(data))
	if err != nil {
		return nil, geo.Info{}, fuserr.Wrap(fuserr.FileFormat, path, err)
	}
	switch f.Compression {
	case compNone, compLZW, compDeflate, compDeflate2:
	default:
		return nil, geo.Info{}, fuserr.FormatErrorf("%s: unsupported TIFF compression %d", path, f.Compression)
	}

	base, err := tiffBaseType(f)
	if err != nil {
		return nil, geo.Info{}, fuserr.Wrap(fuserr.FileFormat, path, err)
	}
	channels := int(f.SamplesPerPixel)

	raw, err := decodeStrips(data, f, bo)
	if err != nil {
		return nil, geo.Info{}, fuserr.Wrap(fuserr.FileFormat, path, err)
	}

	img, err := raster.New(int(f.Width), int(f.Height), pixtype.GetFullType(base, channels))
	if err != nil {
		return nil, geo.Info{}, err
	}
	if err := unpackSamples(img, raw, base, bo); err != nil {
		return nil, geo.Info{}, fuserr.Wrap(fuserr.FileFormat, path, err)
	}

	gi := geoInfoFromIFD(path, f)
	gi.Base = base
	gi.Channels = channels
	gi.Filename = path
	if f.NoData != "" {
		if v, err := strconv.ParseFloat(f.NoData, 64); err == nil {
			nd := v
			gi.NoData = []*float64{&nd}
		}
	}
	if f.Photometric == photoPalette && !opts.IgnoreColorTable {
		gi.ColorTable = decodeColorMap(f.ColorMap)
	}

	if !opts.Crop.Empty() {
		if err := img.Crop(opts.Crop); err != nil {
			return nil, geo.Info{}, err
		}
	}
	if opts.FlipH || opts.FlipV {
		flipInPlace(img, opts.FlipH, opts.FlipV)
	}
	return img, gi, nil
}

func tiffBaseType(f ifd) (pixtype.BaseType, error) {
	bps := 8
	if len(f.BitsPerSample) > 0 {
		bps = int(f.BitsPerSample[0])
	}
	sf := 1 // unsigned int
	if len(f.SampleFormat) > 0 {
		sf = int(f.SampleFormat[0])
	}
	switch {
	case sf == 3 && bps == 32:
		return pixtype.Float32, nil
	case sf == 3 && bps == 64:
		return pixtype.Float64, nil
	case sf == 2 && bps == 8:
		return pixtype.Int8, nil
	case sf == 2 && bps == 16:
		return pixtype.Int16, nil
	case sf == 2 && bps == 32:
		return pixtype.Int32, nil
	case bps == 8:
		return pixtype.Uint8, nil
	case bps == 16:
		return pixtype.Uint16, nil
	default:
		return 0, fmt.Errorf("unsupported TIFF sample layout: %d bits, format %d", bps, sf)
	}
}

// decodeStrips concatenates and decompresses every strip into one
// contiguous chunky-pixel buffer, undoing horizontal-differencing
// prediction if present.
func decodeStrips(data []byte, f ifd, bo binary.ByteOrder) ([]byte, error) {
	var out []byte
	for i := range f.StripOffsets {
		off, n := f.StripOffsets[i], f.StripByteCounts[i]
		if n == 0 {
			continue
		}
		end := off + n
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("strip %d [%d:%d] exceeds file size %d", i, off, end, len(data))
		}
		chunk := data[off:end]
		var dec []byte
		switch f.Compression {
		case compNone:
			dec = chunk
		case compLZW:
			d, err := decompressTIFFLZW(chunk)
			if err != nil {
				return nil, fmt.Errorf("decompressing strip %d: %w", i, err)
			}
			dec = d
		case compDeflate, compDeflate2:
			d, err := inflate(chunk)
			if err != nil {
				return nil, fmt.Errorf("inflating strip %d: %w", i, err)
			}
			dec = d
		}
		out = append(out, dec...)
	}
	if f.Predictor == 2 {
		bps := 8
		if len(f.BitsPerSample) > 0 {
			bps = int(f.BitsPerSample[0])
		}
		undoHorizontalDiff(out, int(f.Width), int(f.SamplesPerPixel), bps, bo)
	}
	return out, nil
}

func undoHorizontalDiff(data []byte, width, spp, bps int, bo binary.ByteOrder) {
	sampleBytes := bps / 8
	rowBytes := width * spp * sampleBytes
	for off := 0; off+rowBytes <= len(data); off += rowBytes {
		row := data[off : off+rowBytes]
		for x := spp * sampleBytes; x+sampleBytes <= len(row); x += sampleBytes {
			switch sampleBytes {
			case 1:
				row[x] += row[x-spp*sampleBytes]
			case 2:
				prev := bo.Uint16(row[x-spp*sampleBytes:])
				cur := bo.Uint16(row[x:])
				bo.PutUint16(row[x:], prev+cur)
			case 4:
				prev := bo.Uint32(row[x-spp*sampleBytes:])
				cur := bo.Uint32(row[x:])
				bo.PutUint32(row[x:], prev+cur)
			}
		}
	}
}

// unpackSamples reads raw (possibly multi-byte) samples out of data in
// row-major chunky order into img, saturating through setF64's shared
// path so every base type is handled uniformly.
func unpackSamples(img *raster.Image, data []byte, base pixtype.BaseType, bo binary.ByteOrder) error {
	w, h, c := img.Width(), img.Height(), img.Channels()
	sz := base.ByteSize()
	need := w * h * c * sz
	if len(data) < need {
		return fmt.Errorf("pixel data too short: got %d bytes, need %d", len(data), need)
	}
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				v := decodeSample(data[i:i+sz], base, bo)
				img.SetPixel(x, y, ch, v)
				i += sz
			}
		}
	}
	return nil
}

func decodeSample(b []byte, base pixtype.BaseType, bo binary.ByteOrder) float64 {
	switch base {
	case pixtype.Uint8:
		return float64(b[0])
	case pixtype.Int8:
		return float64(int8(b[0]))
	case pixtype.Uint16:
		return float64(bo.Uint16(b))
	case pixtype.Int16:
		return float64(int16(bo.Uint16(b)))
	case pixtype.Int32:
		return float64(int32(bo.Uint32(b)))
	case pixtype.Float32:
		return float64(math.Float32frombits(bo.Uint32(b)))
	case pixtype.Float64:
		return math.Float64frombits(bo.Uint64(b))
	default:
		return 0
	}
}

func encodeSample(v float64, base pixtype.BaseType, bo binary.ByteOrder, out []byte) {
	switch base {
	case pixtype.Uint8:
		out[0] = byte(int64(v))
	case pixtype.Int8:
		out[0] = byte(int8(int64(v)))
	case pixtype.Uint16:
		bo.PutUint16(out, uint16(int64(v)))
	case pixtype.Int16:
		bo.PutUint16(out, uint16(int16(int64(v))))
	case pixtype.Int32:
		bo.PutUint32(out, uint32(int32(int64(v))))
	case pixtype.Float32:
		bo.PutUint32(out, math.Float32bits(float32(v)))
	case pixtype.Float64:
		bo.PutUint64(out, math.Float64bits(v))
	}
}

func flipInPlace(img *raster.Image, flipH, flipV bool) {
	w, h, c := img.Width(), img.Height(), img.Channels()
	for y := 0; y < h; y++ {
		yy := y
		if flipV {
			yy = h - 1 - y
		}
		if yy < y {
			continue
		}
		for x := 0; x < w; x++ {
			xx := x
			if flipH {
				xx = w - 1 - x
			}
			if yy == y && xx < x {
				continue
			}
			for ch := 0; ch < c; ch++ {
				a := img.GetPixel(x, y, ch)
				b := img.GetPixel(xx, yy, ch)
				img.SetPixel(x, y, ch, b)
				img.SetPixel(xx, yy, ch, a)
			}
		}
	}
}

func decodeColorMap(cm []uint16) []geo.ColorTableEntry {
	if len(cm) == 0 || len(cm)%3 != 0 {
		return nil
	}
	n := len(cm) / 3
	out := make([]geo.ColorTableEntry, n)
	for i := 0; i < n; i++ {
		out[i] = geo.ColorTableEntry{
			R: uint8(cm[i] >> 8),
			G: uint8(cm[n+i] >> 8),
			B: uint8(cm[2*n+i] >> 8),
			A: 255,
		}
	}
	return out
}

func encodeColorMap(ct []geo.ColorTableEntry) []uint16 {
	n := len(ct)
	out := make([]uint16, 3*n)
	for i, e := range ct {
		out[i] = uint16(e.R) << 8
		out[n+i] = uint16(e.G) << 8
		out[2*n+i] = uint16(e.B) << 8
	}
	return out
}

// Encode writes img as a single-strip LZW-compressed GeoTIFF (spec
// §4.D: "on the GTiff driver adds LZW compression").
func (d GTiffDriver) Encode(path string, img *raster.Image, gi geo.Info) error {
	return writeGTiff(path, img, gi, true)
}

func writeGTiff(path string, img *raster.Image, gi geo.Info, lzw bool) error {
	base := img.BaseType()
	bo := binary.LittleEndian
	w, h, c := img.Width(), img.Height(), img.Channels()
	sz := base.ByteSize()

	raw := make([]byte, w*h*c*sz)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				encodeSample(img.GetPixel(x, y, ch), base, bo, raw[i:i+sz])
				i += sz
			}
		}
	}
	var stripData []byte
	compression := uint16(compNone)
	if lzw {
		stripData = compressTIFFLZW(raw)
		compression = compLZW
	} else {
		stripData = raw
	}

	var buf bytes.Buffer
	w2 := bufio.NewWriter(&buf)
	w2.WriteString("II")
	binary.Write(w2, bo, uint16(42))
	binary.Write(w2, bo, uint32(8)) // first IFD offset

	entries := tiffWriteEntries(img, gi, compression, uint32(len(stripData)))
	entryCount := len(entries) + 1 // +1 for the strip-offsets entry added below
	ifdOffset := 8
	dataStart := ifdOffset + 2 + entryCount*12 + 4

	var extra bytes.Buffer
	entries = resolveWriteEntries(entries, &extra, dataStart, bo)
	stripOffset := uint32(dataStart + extra.Len())
	entries = append(entries, makeEntry(tagStripOffsets, dtLong, 1, stripOffset))
	sortEntries(entries)

	binary.Write(w2, bo, uint16(len(entries)))
	for _, e := range entries {
		writeEntry(w2, bo, e)
	}
	binary.Write(w2, bo, uint32(0)) // no next IFD
	w2.Write(extra.Bytes())
	w2.Write(stripData)
	w2.Flush()

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fuserr.Wrap(fuserr.Runtime, path, err)
	}
	if !gi.HasGeotrans() {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fuserr.Wrap(fuserr.Runtime, path, err)
	}
	return nil
}

// writeEntryRaw is a not-yet-resolved TIFF directory entry: Inline
// holds the value if it fits in 4 bytes, else Data holds the bytes to
// be written to the overflow area and patched in once its offset is
// known.
type writeEntryRaw struct {
	Tag, DataType uint16
	Count         uint32
	Inline        uint32
	Data          []byte
}

func makeEntry(tag, dt uint16, count, inline uint32) writeEntryRaw {
	return writeEntryRaw{Tag: tag, DataType: dt, Count: count, Inline: inline}
}

func tiffWriteEntries(img *raster.Image, gi geo.Info, compression uint16, stripBytes uint32) []writeEntryRaw {
	base := img.BaseType()
	bps := uint16(base.ByteSize() * 8)
	sf := uint16(1)
	if base == pixtype.Int8 || base == pixtype.Int16 || base == pixtype.Int32 {
		sf = 2
	} else if base == pixtype.Float32 || base == pixtype.Float64 {
		sf = 3
	}

	photometric := uint16(photoBlackIsZero)
	if len(gi.ColorTable) > 0 {
		photometric = photoPalette
	} else if img.Channels() == 3 || img.Channels() == 4 {
		photometric = photoRGB
	}

	entries := []writeEntryRaw{
		makeEntry(tagImageWidth, dtLong, 1, uint32(img.Width())),
		makeEntry(tagImageLength, dtLong, 1, uint32(img.Height())),
		makeEntry(tagCompression, dtShort, 1, uint32(compression)),
		makeEntry(tagPhotometric, dtShort, 1, uint32(photometric)),
		makeEntry(tagSamplesPerPixel, dtShort, 1, uint32(img.Channels())),
		makeEntry(tagRowsPerStrip, dtLong, 1, uint32(img.Height())),
		makeEntry(tagStripByteCounts, dtLong, 1, stripBytes),
		makeEntry(tagPlanarConfig, dtShort, 1, 1),
	}

	bpsData := make([]byte, img.Channels()*2)
	for i := 0; i < img.Channels(); i++ {
		binary.LittleEndian.PutUint16(bpsData[i*2:], bps)
	}
	entries = append(entries, writeEntryRaw{Tag: tagBitsPerSample, DataType: dtShort, Count: uint32(img.Channels()), Data: bpsData})

	sfData := make([]byte, img.Channels()*2)
	for i := 0; i < img.Channels(); i++ {
		binary.LittleEndian.PutUint16(sfData[i*2:], sf)
	}
	entries = append(entries, writeEntryRaw{Tag: tagSampleFormat, DataType: dtShort, Count: uint32(img.Channels()), Data: sfData})

	if len(gi.ColorTable) > 0 {
		cm := encodeColorMap(gi.ColorTable)
		cmData := make([]byte, len(cm)*2)
		for i, v := range cm {
			binary.LittleEndian.PutUint16(cmData[i*2:], v)
		}
		entries = append(entries, writeEntryRaw{Tag: tagColorMap, DataType: dtShort, Count: uint32(len(cm)), Data: cmData})
	}

	if nd, ok := gi.NoDataAt(0); ok {
		s := strconv.FormatFloat(nd, 'g', -1, 64) + "\x00"
		entries = append(entries, writeEntryRaw{Tag: tagGDALNoData, DataType: dtASCII, Count: uint32(len(s)), Data: []byte(s)})
	}

	if gi.HasGeotrans() {
		a := gi.Geotrans
		scaleData := make([]byte, 24)
		binary.LittleEndian.PutUint64(scaleData[0:], math.Float64bits(a.A))
		binary.LittleEndian.PutUint64(scaleData[8:], math.Float64bits(-a.D))
		binary.LittleEndian.PutUint64(scaleData[16:], 0)
		entries = append(entries, writeEntryRaw{Tag: tagModelPixelScale, DataType: dtDouble, Count: 3, Data: scaleData})

		tpData := make([]byte, 48)
		binary.LittleEndian.PutUint64(tpData[24:], math.Float64bits(a.Tx))
		binary.LittleEndian.PutUint64(tpData[32:], math.Float64bits(a.Ty))
		entries = append(entries, writeEntryRaw{Tag: tagModelTiepoint, DataType: dtDouble, Count: 6, Data: tpData})

		keys := buildGeoKeys(gi.GeotransSRS)
		keyData := make([]byte, len(keys)*2)
		for i, k := range keys {
			binary.LittleEndian.PutUint16(keyData[i*2:], k)
		}
		entries = append(entries, writeEntryRaw{Tag: tagGeoKeyDirectory, DataType: dtShort, Count: uint32(len(keys)), Data: keyData})
	}

	return entries
}

// resolveWriteEntries appends each entry's out-of-line data to extra
// and records the resulting offset, for entries whose value doesn't
// fit in the inline 4 bytes.
func resolveWriteEntries(entries []writeEntryRaw, extra *bytes.Buffer, dataStart int, bo binary.ByteOrder) []writeEntryRaw {
	out := make([]writeEntryRaw, len(entries))
	for i, e := range entries {
		if e.Data == nil {
			out[i] = e
			continue
		}
		if len(e.Data) <= 4 {
			var inline [4]byte
			copy(inline[:], e.Data)
			out[i] = writeEntryRaw{Tag: e.Tag, DataType: e.DataType, Count: e.Count, Inline: bo.Uint32(inline[:])}
			continue
		}
		offset := dataStart + extra.Len()
		extra.Write(e.Data)
		out[i] = writeEntryRaw{Tag: e.Tag, DataType: e.DataType, Count: e.Count, Inline: uint32(offset)}
	}
	return out
}

func sortEntries(entries []writeEntryRaw) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].Tag > entries[j].Tag; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}

func writeEntry(w io.Writer, bo binary.ByteOrder, e writeEntryRaw) {
	var buf [12]byte
	bo.PutUint16(buf[0:2], e.Tag)
	bo.PutUint16(buf[2:4], e.DataType)
	bo.PutUint32(buf[4:8], e.Count)
	bo.PutUint32(buf[8:12], e.Inline)
	w.Write(buf[:])
}
