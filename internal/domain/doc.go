// Package domain classifies KNMI weather-radar reflectivity images as rainy or
// not rainy.
//
// # Data Source
//
// Images come from the KNMI Data Platform precipitation datasets
// (nl_rdr_data_rtcor_5m and its daily tar archive), one HDF5 file per
// five-minute composite. Each file holds a single 2-D uint8 image under
// image1/image_data and a calibration group image1/calibration whose
// calibration_out_of_image attribute names the pixel value used outside the
// radar coverage area.
//
// # Out-of-image Pixels
//
// The declared sentinel is not always the value actually written: some files
// declare 255 and use 244 (or the reverse). [NormalizeImage] therefore zeroes
// two values, in order:
//
//	1. every pixel equal to the declared sentinel;
//	2. every pixel equal to the top-left corner value after step 1.
//
// The corner is always outside the circular coverage area, so step 2 catches
// whatever value the producer really used.
//
// # Clutter
//
// Ground and sea clutter shows up as isolated high-contrast pixels. An image
// is cluttered when more than 130 pixels have a squared gradient magnitude
// above 500². Gradients follow the usual numerical convention: central
// differences inside the grid, one-sided differences on the first and last
// row and column. Because of that convention a one-pixel checkerboard has a
// zero interior gradient and only its perimeter counts; see [ClutterPixels].
//
// # Rain
//
// Shower intensity is the sum of pixel values after dropping 8-connected
// blobs smaller than 9 pixels and multiplying by the static [ClutterMask].
// An image is rainy when the intensity exceeds 3000 and the image is not
// cluttered. Both thresholds are calibrated constants; changing them changes
// every historical label.
//
// # Labels
//
// A [Label] has three states: rainy, not rainy, and unknown. Unknown means the
// file could not be processed and is never folded into "not rainy".
package domain
