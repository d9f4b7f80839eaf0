// Command quicklook renders one radar file as a heat map titled with its label.
// Pixels the clutter mask suppresses are left blank.
//
// Usage:
//
//	go run ./cmd/quicklook -file data/RAD_NL25_RAC_RT_202401011000.h5 -out rain.png
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/radar-rain-labeler/internal/adapter/hdf5"
	"github.com/couchcryptid/radar-rain-labeler/internal/adapter/npy"
	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
	"github.com/couchcryptid/radar-rain-labeler/internal/render"
)

func main() {
	file := flag.String("file", "", "radar HDF5 file to render")
	out := flag.String("out", "", "output image (default: <file>.png next to the input)")
	maskPath := flag.String("mask", "cluttermask.npy", "clutter mask .npy file")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *out == "" {
		*out = strings.TrimSuffix(*file, filepath.Ext(*file)) + ".png"
	}

	if err := run(*file, *out, *maskPath); err != nil {
		fmt.Fprintf(os.Stderr, "quicklook: %v\n", err)
		os.Exit(1)
	}
}

func run(file, out, maskPath string) error {
	mask, err := npy.LoadClutterMask(maskPath, 0, 0)
	if err != nil {
		return err
	}

	raw, err := hdf5.NewDecoder().Decode(file)
	if err != nil {
		return err
	}

	grid := domain.NormalizeImage(raw)
	label := domain.NewLabel(filepath.Base(file), domain.Classify(grid, mask))
	title := render.Title(label)

	if err := render.Quicklook(grid, mask, title, out); err != nil {
		return err
	}
	fmt.Printf("%s\nwritten to %s\n", title, out)
	return nil
}
