package hdf5

import (
	"fmt"
	"strconv"
	"strings"
)

// metadataValue looks up key in GDAL "KEY=VALUE" metadata.
func metadataValue(md []string, key string) (string, bool) {
	for _, item := range md {
		k, v, ok := strings.Cut(item, "=")
		if ok && k == key {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// sentinelValue parses the out-of-image calibration value. GDAL renders
// scalar attributes as text; array attributes hold the value first.
func sentinelValue(md []string, key string) (float64, error) {
	s, ok := metadataValue(md, key)
	if !ok {
		return 0, fmt.Errorf("missing attribute %s", key)
	}
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", key, err)
	}
	return v, nil
}

// findSubdataset returns the GDAL name of the subdataset whose internal
// path is imagePath, e.g. HDF5:"f.h5"://image1/image_data.
func findSubdataset(md []string, imagePath string) (string, error) {
	suffix := "//" + strings.TrimPrefix(imagePath, "/")
	for _, item := range md {
		k, v, ok := strings.Cut(item, "=")
		if !ok || !strings.HasSuffix(k, "_NAME") {
			continue
		}
		if strings.HasSuffix(v, suffix) {
			return v, nil
		}
	}
	return "", fmt.Errorf("missing dataset %s", imagePath)
}
