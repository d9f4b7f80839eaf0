package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
)

// LabelFile decodes, normalizes and classifies one radar file. It never
// fails: a file that cannot be processed gets an unknown label.
func (l *Labeler) LabelFile(path string) (label domain.Label) {
	name := labelName(path)
	start := time.Now()

	defer func() {
		// A malformed grid must not take down the batch.
		if r := recover(); r != nil {
			label = l.unknown(name, path, fmt.Errorf("classify: %v", r))
		}
		l.metrics.FilesProcessed.Inc()
		l.metrics.Labels.WithLabelValues(label.Outcome()).Inc()
		l.metrics.ClassifyDuration.Observe(time.Since(start).Seconds())
	}()

	raw, err := l.decoder.Decode(path)
	if err != nil {
		return l.unknown(name, path, err)
	}
	if err := raw.Validate(); err != nil {
		return l.unknown(name, path, &domain.DecodeError{Path: path, Err: err})
	}

	grid := domain.NormalizeImage(raw)
	c := domain.Classify(grid, l.mask)

	l.logger.Debug("file labeled",
		"filename", name,
		"rainy", c.Rainy,
		"shower_intensity", c.ShowerIntensity,
		"clutter_pixels", c.ClutterPixels,
	)
	return domain.NewLabel(name, c)
}

func (l *Labeler) unknown(name, path string, err error) domain.Label {
	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		l.metrics.DecodeErrors.Inc()
	}
	l.logger.Warn("labeling failed, recording unknown",
		"filename", name,
		"path", path,
		"error", err,
	)
	return domain.UnknownLabel(name, err)
}
