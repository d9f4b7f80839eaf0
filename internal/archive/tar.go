// Package archive unpacks the daily KNMI tar archives next to themselves.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Result lists the members handled by ExtractTar.
type Result struct {
	Extracted []string
	Skipped   []string
}

// ExtractTar extracts every regular file of the archive at path into the
// archive's directory. Members that already exist are left alone, so an
// interrupted extraction can be resumed. Members that would land outside the
// directory are rejected.
func ExtractTar(path string, logger *slog.Logger) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var res Result

	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("read %s: %w", path, err)
		}

		name := filepath.FromSlash(hdr.Name)
		if !filepath.IsLocal(name) {
			return res, fmt.Errorf("member %q escapes %s", hdr.Name, dir)
		}
		target := filepath.Join(dir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return res, err
			}
			continue
		case tar.TypeReg:
		default:
			logger.Warn("skipping unsupported tar member", "member", hdr.Name, "type", string(hdr.Typeflag))
			continue
		}

		if _, err := os.Stat(target); err == nil {
			logger.Debug("skipped, already exists", "member", hdr.Name)
			res.Skipped = append(res.Skipped, hdr.Name)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return res, err
		}
		if err := extractFile(target, tr); err != nil {
			return res, fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
		logger.Debug("extracted", "member", hdr.Name)
		res.Extracted = append(res.Extracted, hdr.Name)
	}
}

func extractFile(target string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.part")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}

// ExtractAll runs ExtractTar on every .tar file in dir, in name order.
func ExtractAll(dir string, logger *slog.Logger) (Result, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tar"))
	if err != nil {
		return Result{}, err
	}

	var total Result
	for _, m := range matches {
		res, err := ExtractTar(m, logger)
		total.Extracted = append(total.Extracted, res.Extracted...)
		total.Skipped = append(total.Skipped, res.Skipped...)
		if err != nil {
			return total, err
		}
		logger.Info("archive extracted", "archive", filepath.Base(m),
			"extracted", len(res.Extracted), "skipped", len(res.Skipped))
	}
	return total, nil
}
