package driver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// alwaysFailDriver stands in for a format whose Encode always fails,
// so WriteImage's "retry once as GeoTIFF" recovery can be exercised
// without needing a real failing codec.
type alwaysFailDriver struct {
	name string
	exts []string
}

func (d alwaysFailDriver) Name() string             { return d.name }
func (d alwaysFailDriver) LongName() string         { return d.name }
func (d alwaysFailDriver) DefaultExtension() string { return d.exts[0] }
func (d alwaysFailDriver) Extensions() []string     { return d.exts }
func (d alwaysFailDriver) Probe(string) bool        { return false }
func (d alwaysFailDriver) Decode(path string, _ DecodeOptions) (*raster.Image, geo.Info, error) {
	return nil, geo.Info{}, fuserr.FormatErrorf("always fails")
}
func (d alwaysFailDriver) Encode(string, *raster.Image, geo.Info) error {
	return fuserr.FormatErrorf("always fails")
}

func testImage(t *testing.T) *raster.Image {
	t.Helper()
	img, err := raster.New(2, 2, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)
	return img
}

func TestWriteImage_RetriesAsGeoTIFFWhenNonGTiffDriverFails(t *testing.T) {
	reg := NewRegistry(alwaysFailDriver{name: "FAIL", exts: []string{"fail"}}, NewGTiffDriver())
	path := filepath.Join(t.TempDir(), "out.fail")

	err := WriteImage(reg, path, testImage(t), geo.Info{}, WriteOptions{Format: "fail"})
	require.NoError(t, err)

	retryPath := withExtension(path, "tif")
	_, _, decErr := NewGTiffDriver().Decode(retryPath, DecodeOptions{})
	assert.NoError(t, decErr, "retried GeoTIFF file should exist and decode")
}

func TestWriteImage_RetriesWithSavePrefixWhenGeoTIFFRetryAlsoFails(t *testing.T) {
	reg := NewRegistry(
		alwaysFailDriver{name: "FAIL", exts: []string{"fail"}},
		alwaysFailDriver{name: "GTiff", exts: []string{"tif"}},
	)
	path := filepath.Join(t.TempDir(), "out.fail")

	err := WriteImage(reg, path, testImage(t), geo.Info{}, WriteOptions{
		Format: "fail", Prefix: "custom_", DefaultPrefix: "",
	})
	assert.Error(t, err, "both the GeoTIFF retry and the save_-prefix retry fail here, so the original error propagates")
}

func TestWriteImage_SucceedsDirectlyWithWorkingDriver(t *testing.T) {
	reg := Default()
	path := filepath.Join(t.TempDir(), "out.tif")
	err := WriteImage(reg, path, testImage(t), geo.Info{}, WriteOptions{Format: "tif"})
	require.NoError(t, err)
}

func TestAssignNoData_FindsUnusedBoundaryValue(t *testing.T) {
	img, err := raster.New(2, 2, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)
	img.SetPixel(0, 0, 0, 5)
	img.SetPixel(1, 0, 0, 6)
	img.SetPixel(0, 1, 0, 7)
	img.SetPixel(1, 1, 0, 8)

	v, ok := AssignNoData(img, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, v) // RangeMin(uint8) = 0, unused here
}

func TestAssignNoData_FailsWhenFullRangeIsUsed(t *testing.T) {
	img, err := raster.New(1, 2, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)
	img.SetPixel(0, 0, 0, 0)   // RangeMin
	img.SetPixel(0, 1, 0, 255) // RangeMax

	_, ok := AssignNoData(img, 0)
	assert.False(t, ok)
}
