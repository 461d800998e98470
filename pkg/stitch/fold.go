package stitch

import (
	"image"

	"github.com/tauraamui/dragonpano/pkg/video/videobackend"
	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

func fold(images []Image) (videoframe.Frame, error) {
	if len(images) == 0 {
		return nil, xerror.New("no images to stitch")
	}

	first, err := matOf(images[0])
	if err != nil {
		return nil, err
	}
	panorama := first.Clone()

	for _, img := range images[1:] {
		mat, err := matOf(img)
		if err != nil {
			panorama.Close()
			return nil, err
		}

		if mat.Rows() != panorama.Rows() || mat.Type() != panorama.Type() {
			panorama.Close()
			return nil, xerror.Errorf(
				"%w: sample %d is %dx%d (type %d), panorama is %d high (type %d)",
				ErrDimensionMismatch, img.Index, mat.Cols(), mat.Rows(), mat.Type(), panorama.Rows(), panorama.Type(),
			).AsKind(KindDimensionMismatch)
		}

		w := mat.Cols()
		rightThird := mat.Region(image.Rect(2*(w/3), 0, w, mat.Rows()))
		next := gocv.NewMat()
		gocv.Hconcat(panorama, rightThird, &next)
		rightThird.Close()
		panorama.Close()
		panorama = next
	}

	return videobackend.NewFrameFromMat(panorama), nil
}

func matOf(img Image) (*gocv.Mat, error) {
	mat, ok := img.Frame.DataRef().(*gocv.Mat)
	if !ok {
		return nil, xerror.New("must pass OpenCV frames to stitch")
	}
	if mat.Empty() {
		return nil, xerror.Errorf("%w: sample %d has no pixels", ErrDimensionMismatch, img.Index).AsKind(KindDimensionMismatch)
	}
	return mat, nil
}
