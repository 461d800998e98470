package stitch

import (
	"errors"

	"github.com/tauraamui/xerror"
)

const (
	KindDecodeFailure     xerror.Kind = "decode_failure"
	KindCountMismatch     xerror.Kind = "count_mismatch"
	KindDimensionMismatch xerror.Kind = "dimension_mismatch"
)

var (
	ErrDecodeFailure     = errors.New("unable to retrieve sample image")
	ErrCountMismatch     = errors.New("unexpected number of images to stitch")
	ErrDimensionMismatch = errors.New("image dimensions cannot be concatenated")
)
