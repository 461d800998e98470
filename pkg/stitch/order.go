package stitch

import (
	"sort"

	"github.com/tauraamui/xerror"
)

type OrderPolicy string

const (
	// OrderWidthAscending sorts by frame width, narrowest first, keeping
	// sample order between frames of equal width.
	OrderWidthAscending OrderPolicy = "width"
	OrderSampleIndex    OrderPolicy = "index"
)

// Order returns a sorted copy of images, the input is left untouched.
func Order(images []Image, policy OrderPolicy) ([]Image, error) {
	ordered := make([]Image, len(images))
	copy(ordered, images)

	switch policy {
	case OrderWidthAscending:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Frame.Dimensions().W < ordered[j].Frame.Dimensions().W
		})
	case OrderSampleIndex:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Index < ordered[j].Index
		})
	default:
		return nil, xerror.Errorf("unknown image order policy: %q", policy)
	}
	return ordered, nil
}
