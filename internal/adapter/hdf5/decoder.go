// Package hdf5 decodes KNMI radar composites stored as HDF5 files through GDAL.
package hdf5

import (
	"fmt"

	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
	"github.com/lukeroth/gdal"
)

// Default locations inside a KNMI RTCOR composite.
const (
	DefaultImagePath   = "image1/image_data"
	DefaultSentinelKey = "image1_calibration_calibration_out_of_image"
)

// Decoder reads the precipitation image and its out-of-image sentinel.
type Decoder struct {
	imagePath   string
	sentinelKey string
}

// NewDecoder returns a Decoder for the standard KNMI layout.
func NewDecoder() *Decoder {
	return &Decoder{imagePath: DefaultImagePath, sentinelKey: DefaultSentinelKey}
}

// Decode opens path and returns the raw image. Failures are wrapped in
// *domain.DecodeError.
func (d *Decoder) Decode(path string) (domain.RawImage, error) {
	raw, err := d.decode(path)
	if err != nil {
		return domain.RawImage{}, &domain.DecodeError{Path: path, Err: err}
	}
	return raw, nil
}

func (d *Decoder) decode(path string) (domain.RawImage, error) {
	root, err := gdal.Open(path, gdal.ReadOnly)
	if err != nil {
		return domain.RawImage{}, fmt.Errorf("open: %w", err)
	}
	defer root.Close()

	sentinel, err := sentinelValue(root.Metadata(""), d.sentinelKey)
	if err != nil {
		return domain.RawImage{}, err
	}

	name, err := findSubdataset(root.Metadata("SUBDATASETS"), d.imagePath)
	if err != nil {
		return domain.RawImage{}, err
	}

	image, err := gdal.Open(name, gdal.ReadOnly)
	if err != nil {
		return domain.RawImage{}, fmt.Errorf("open %s: %w", d.imagePath, err)
	}
	defer image.Close()

	if image.RasterCount() < 1 {
		return domain.RawImage{}, fmt.Errorf("%s has no raster band", d.imagePath)
	}
	band := image.RasterBand(1)
	cols, rows := band.XSize(), band.YSize()

	cells := make([]float64, rows*cols)
	if err := band.IO(gdal.RWFlag(gdal.Read), 0, 0, cols, rows, cells, cols, rows, 0, 0); err != nil {
		return domain.RawImage{}, fmt.Errorf("read %s: %w", d.imagePath, err)
	}

	raw := domain.RawImage{Rows: rows, Cols: cols, Cells: cells, OutOfImage: sentinel}
	if err := raw.Validate(); err != nil {
		return domain.RawImage{}, err
	}
	return raw, nil
}
