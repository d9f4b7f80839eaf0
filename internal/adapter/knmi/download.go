package knmi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Download fetches filename into dir unless it already exists there. It
// reports whether a download happened.
func (c *Client) Download(ctx context.Context, filename, dir string) (bool, error) {
	if filename == "" || filepath.Base(filename) != filename || filename == "." || filename == ".." {
		return false, fmt.Errorf("invalid dataset filename %q", filename)
	}

	target := filepath.Join(dir, filename)
	if _, err := os.Stat(target); err == nil {
		c.logger.Info("file exists, skipping download", "path", target)
		c.metrics.FetchDownloads.WithLabelValues("skipped").Inc()
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", target, err)
	}

	u, err := c.TemporaryURL(ctx, filename)
	if err != nil {
		c.metrics.FetchDownloads.WithLabelValues("error").Inc()
		return false, err
	}

	c.logger.Info("downloading file", "filename", filename)
	err = c.do(ctx, "download", u, false, func(resp *http.Response) error {
		return writeAtomic(dir, filename, resp.Body)
	})
	if err != nil {
		c.metrics.FetchDownloads.WithLabelValues("error").Inc()
		return false, fmt.Errorf("download %s: %w", filename, err)
	}

	c.metrics.FetchDownloads.WithLabelValues("downloaded").Inc()
	c.logger.Info("downloaded file", "path", target)
	return true, nil
}

// writeAtomic streams r into a temporary file in dir and renames it to
// name. Read failures are transient so the download is retried from scratch.
func writeAtomic(dir, name string, r io.Reader) error {
	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return &transientError{err: fmt.Errorf("write %s: %w", name, err)}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
