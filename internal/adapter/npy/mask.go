// Package npy loads the static clutter mask from a NumPy .npy file.
package npy

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
	"github.com/sbinet/npyio"
)

// LoadClutterMask reads a 2-D boolean or numeric array from path and returns it
// as a clutter mask. Non-zero cells are kept. When rows and cols are positive
// the array must have exactly that shape. Every failure is an *domain.AssetLoadError.
func LoadClutterMask(path string, rows, cols int) (*domain.ClutterMask, error) {
	mask, err := loadClutterMask(path, rows, cols)
	if err != nil {
		return nil, &domain.AssetLoadError{Path: path, Err: err}
	}
	return mask, nil
}

func loadClutterMask(path string, rows, cols int) (*domain.ClutterMask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("mask must be 2-D, have shape %v", shape)
	}
	nr, nc := shape[0], shape[1]

	flags, err := readFlags(r, nr*nc)
	if err != nil {
		return nil, err
	}
	if r.Header.Descr.Fortran {
		flags = fromColumnMajor(flags, nr, nc)
	}

	mask, err := domain.NewClutterMask(nr, nc, flags)
	if err != nil {
		return nil, err
	}
	if rows > 0 && cols > 0 {
		if err := mask.CheckDims(rows, cols); err != nil {
			return nil, err
		}
	}
	return mask, nil
}

// readFlags decodes the array body into keep flags according to its dtype.
func readFlags(r *npyio.Reader, n int) ([]bool, error) {
	dtype := r.Header.Descr.Type
	switch dtype {
	case "|b1", "b1", "?":
		var v []bool
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return checkLen(v, n)
	case "<f8":
		var v []float64
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return checkLen(nonZero(v), n)
	case "<f4":
		var v []float32
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return checkLen(nonZero(v), n)
	case "|u1", "u1":
		var v []uint8
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return checkLen(nonZero(v), n)
	case "<i8":
		var v []int64
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return checkLen(nonZero(v), n)
	case "<i4":
		var v []int32
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return checkLen(nonZero(v), n)
	default:
		return nil, fmt.Errorf("unsupported mask dtype %q", dtype)
	}
}

type number interface {
	~float32 | ~float64 | ~uint8 | ~int32 | ~int64
}

func nonZero[T number](v []T) []bool {
	out := make([]bool, len(v))
	for i, x := range v {
		out[i] = x != 0
	}
	return out
}

func checkLen(v []bool, n int) ([]bool, error) {
	if len(v) != n {
		return nil, errors.New("mask body does not match its shape")
	}
	return v, nil
}

func fromColumnMajor(v []bool, rows, cols int) []bool {
	out := make([]bool, len(v))
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			out[r*cols+c] = v[c*rows+r]
		}
	}
	return out
}
