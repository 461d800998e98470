package videostorage

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tauraamui/dragonpano/pkg/log"
	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

type dirStore struct {
	fs    afero.Fs
	root  string
	ext   string
	codec Codec
}

// NewDirStore keeps each artifact as its own encoded image file
// named frame_<index><ext> directly under root.
func NewDirStore(fs afero.Fs, root, ext string, codec Codec) Store {
	return &dirStore{fs: fs, root: root, ext: ext, codec: codec}
}

func (s *dirStore) path(index int) string {
	return filepath.Join(s.root, ArtifactName(index, s.ext))
}

func (s *dirStore) Save(index int, frame videoframe.Frame) error {
	if err := ensureDirectoryPathExists(s.fs, s.root); err != nil {
		return xerror.Errorf("unable to create artifact directory %s: %w", s.root, err)
	}

	data, err := s.codec.Encode(s.ext, frame)
	if err != nil {
		return xerror.Errorf("unable to encode sample %d: %w", index, err)
	}

	path := s.path(index)
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return xerror.Errorf("unable to write sample artifact %s: %w", path, err)
	}
	log.Debug("Saved sample artifact: %s", path)
	return nil
}

func (s *dirStore) Load(index int) (videoframe.Frame, error) {
	path := s.path(index)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, xerror.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return nil, xerror.Errorf("unable to read sample artifact %s: %w", path, err)
	}
	return s.codec.Decode(data)
}

func (s *dirStore) Close() error { return nil }

func ensureDirectoryPathExists(fs afero.Fs, path string) error {
	err := fs.MkdirAll(path, os.ModePerm|os.ModeDir)
	if err == nil || os.IsExist(err) {
		return nil
	}
	return err
}
