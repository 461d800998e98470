package videobackend

import (
	"context"
	"errors"

	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

const KindResourceUnavailable xerror.Kind = "resource_unavailable"

var ErrStreamUnavailable = errors.New("unable to open video stream")

// Stream is a finite, forward only source of frames. Read fills the
// given frame and returns io.EOF once the source has no more data.
type Stream interface {
	UUID() string
	FPS() float64
	FrameCount() int
	Read(videoframe.Frame) error
	Close() error
}

type Backend interface {
	Open(context.Context, string) (Stream, error)
	NewFrame() videoframe.Frame
	Encode(ext string, frame videoframe.Frame) ([]byte, error)
	Decode([]byte) (videoframe.Frame, error)
}

func Default() Backend {
	return OpenCV()
}

func OpenCV() Backend {
	return &openCVBackend{}
}

func Mock() Backend {
	return MockWithSettings(DefaultMockSettings())
}

func Resolve(t string) Backend {
	switch t {
	case "mock":
		return Mock()
	default:
		return Default()
	}
}
