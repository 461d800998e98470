package stitch

import (
	"github.com/tauraamui/dragonpano/pkg/log"
	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

// Loader fetches the artifact stored under a sample index.
type Loader interface {
	Load(index int) (videoframe.Frame, error)
}

type Image struct {
	Index int
	Frame videoframe.Frame
}

type Skipped struct {
	Index  int
	Reason error
}

// Retrieval is the outcome of loading a bounded range of sample
// artifacts, failed loads are recorded instead of aborting.
type Retrieval struct {
	Images  []Image
	Skipped []Skipped
}

// Retrieve loads sample indices [0, count) and nothing beyond.
func Retrieve(loader Loader, count int) Retrieval {
	r := Retrieval{}
	for i := 0; i < count; i++ {
		frame, err := loader.Load(i)
		if err == nil && frame == nil {
			err = xerror.New("loader returned no frame")
		}
		if err != nil {
			log.Warn("Skipping sample %d: %v", i, err)
			r.Skipped = append(r.Skipped, Skipped{
				Index:  i,
				Reason: xerror.Errorf("%w %d: %v", ErrDecodeFailure, i, err).AsKind(KindDecodeFailure),
			})
			continue
		}
		r.Images = append(r.Images, Image{Index: i, Frame: frame})
	}
	return r
}

func (r Retrieval) Close() {
	for _, img := range r.Images {
		img.Frame.Close()
	}
}
