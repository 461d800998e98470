package stitch

import (
	"github.com/tauraamui/dragonpano/pkg/log"
	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

const DefaultCount = 9

type Settings struct {
	Count int
	Order OrderPolicy
}

func DefaultSettings() Settings {
	return Settings{Count: DefaultCount, Order: OrderWidthAscending}
}

type Stitcher struct {
	settings Settings
}

func New(settings Settings) *Stitcher {
	return &Stitcher{settings: settings}
}

// StitchFrom retrieves the first Count samples from loader and stitches
// them. Retrieved frames are released before returning, the retrieval
// is handed back for its skipped entries.
func (s *Stitcher) StitchFrom(loader Loader) (videoframe.Frame, Retrieval, error) {
	retrieval := Retrieve(loader, s.settings.Count)
	defer retrieval.Close()

	panorama, err := s.Stitch(retrieval.Images)
	return panorama, retrieval, err
}

// Stitch folds exactly Count images into one panorama. Each image after
// the first contributes only its rightmost third. The images themselves
// are not modified.
func (s *Stitcher) Stitch(images []Image) (videoframe.Frame, error) {
	if len(images) != s.settings.Count {
		return nil, xerror.Errorf(
			"%w: expected %d, got %d", ErrCountMismatch, s.settings.Count, len(images),
		).AsKind(KindCountMismatch)
	}

	ordered, err := Order(images, s.settings.Order)
	if err != nil {
		return nil, err
	}

	log.Info("Stitching %d images ordered by %s...", len(ordered), s.settings.Order)
	panorama, err := fold(ordered)
	if err != nil {
		return nil, err
	}
	log.Info("Stitched panorama of %s", panorama.Dimensions())
	return panorama, nil
}

// ExpectedWidth is the width a panorama folded from frames of the given
// widths, in stitch order, ends up with.
func ExpectedWidth(widths []int) int {
	if len(widths) == 0 {
		return 0
	}
	total := widths[0]
	for _, w := range widths[1:] {
		total += w - 2*(w/3)
	}
	return total
}
