package domain

import "fmt"

// DecodeError reports a radar file that could not be read or lacks the
// expected structure. It is recovered per file by the labeler.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AssetLoadError reports a missing or malformed clutter mask. It is fatal:
// no image can be classified without the mask.
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load clutter mask %s: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }
