package videostorage

import (
	"errors"
	"fmt"

	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
)

var ErrArtifactMissing = errors.New("sample artifact does not exist")

// Store persists sampled frames as individually addressable artifacts
// keyed by sample index.
type Store interface {
	Save(index int, frame videoframe.Frame) error
	Load(index int) (videoframe.Frame, error)
	Close() error
}

// Codec turns frames into encoded image bytes and back.
type Codec interface {
	Encode(ext string, frame videoframe.Frame) ([]byte, error)
	Decode([]byte) (videoframe.Frame, error)
}

func ArtifactName(index int, ext string) string {
	return fmt.Sprintf("frame_%d%s", index, ext)
}
