package pano

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/dragonpano/pkg/configdef"
	"github.com/tauraamui/dragonpano/pkg/log"
	"github.com/tauraamui/dragonpano/pkg/sampler"
	"github.com/tauraamui/dragonpano/pkg/stitch"
	"github.com/tauraamui/dragonpano/pkg/video/videobackend"
	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/dragonpano/pkg/video/videostorage"
	"github.com/tauraamui/xerror"
)

const (
	StoreDirectory = "directory"
	StoreSQLite    = "sqlite"
	sqliteFileName = "samples.db"
)

// Progress is called once the video is open with its advisory frame
// count and returns the per frame callback to use while sampling.
type Progress func(total int) func(decoded int)

type Option func(*Pipeline)

func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) { p.fs = fs }
}

func WithProgress(progress Progress) Option {
	return func(p *Pipeline) { p.progress = progress }
}

// Pipeline samples a video into an artifact store and stitches the
// stored samples into a panorama.
type Pipeline struct {
	cfg      configdef.Values
	backend  videobackend.Backend
	fs       afero.Fs
	progress Progress
}

type StitchResult struct {
	Panorama   videoframe.Dimensions
	Skipped    []stitch.Skipped
	OutputPath string
}

type Report struct {
	Sampling sampler.Result
	Stitch   StitchResult
}

func New(cfg configdef.Values, backend videobackend.Backend, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, backend: backend, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run samples then stitches, the second stage only starts once the
// first has finished successfully.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{}
	result, err := p.Sample(ctx)
	report.Sampling = result
	if err != nil {
		return report, err
	}

	stitched, err := p.Stitch()
	report.Stitch = stitched
	return report, err
}

func (p *Pipeline) Sample(ctx context.Context) (sampler.Result, error) {
	if err := p.fs.MkdirAll(p.cfg.OutputFolder, os.ModeDir|os.ModePerm); err != nil {
		return sampler.Result{}, xerror.Errorf("unable to create output folder %s: %w", p.cfg.OutputFolder, err)
	}

	store, err := p.openStore()
	if err != nil {
		return sampler.Result{}, err
	}
	defer closeStore(store)

	var onFrame func(int)
	s := sampler.New(sampler.Settings{
		Rate:      p.cfg.SampleRate,
		MaxFrames: p.cfg.MaxFrames,
		OnFrame: func(decoded int) {
			if onFrame != nil {
				onFrame(decoded)
			}
		},
	}, store, p.backend.NewFrame)

	opener := sampler.OpenerFunc(func(ctx context.Context, path string) (sampler.Stream, error) {
		stream, err := p.backend.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		if p.progress != nil {
			onFrame = p.progress(stream.FrameCount())
		}
		return stream, nil
	})

	return s.SampleVideo(ctx, opener, p.cfg.VideoPath)
}

// Stitch builds the panorama from the stored samples and writes it to
// the output path. Nothing is written if stitching fails.
func (p *Pipeline) Stitch() (StitchResult, error) {
	result := StitchResult{}
	store, err := p.openStore()
	if err != nil {
		return result, err
	}
	defer closeStore(store)

	stitcher := stitch.New(stitch.Settings{
		Count: p.cfg.SampleCount,
		Order: stitch.OrderPolicy(p.cfg.OrderBy),
	})

	panorama, retrieval, err := stitcher.StitchFrom(store)
	result.Skipped = retrieval.Skipped
	if err != nil {
		return result, err
	}
	defer panorama.Close()
	result.Panorama = panorama.Dimensions()

	if err := p.writePanorama(panorama); err != nil {
		return result, err
	}
	result.OutputPath = p.cfg.OutputPath

	return result, nil
}

func (p *Pipeline) writePanorama(panorama videoframe.Frame) error {
	data, err := p.backend.Encode(outputExt(p.cfg.OutputPath), panorama)
	if err != nil {
		return xerror.Errorf("unable to encode panorama: %w", err)
	}

	if dir := filepath.Dir(p.cfg.OutputPath); dir != "." {
		if err := p.fs.MkdirAll(dir, os.ModeDir|os.ModePerm); err != nil {
			return xerror.Errorf("unable to create panorama parent directory %s: %w", dir, err)
		}
	}

	if err := afero.WriteFile(p.fs, p.cfg.OutputPath, data, 0644); err != nil {
		return xerror.Errorf("unable to write panorama to %s: %w", p.cfg.OutputPath, err)
	}

	log.Info("Wrote panorama [%s] to %s", panorama.Dimensions(), p.cfg.OutputPath)
	return nil
}

func (p *Pipeline) openStore() (videostorage.Store, error) {
	switch p.cfg.ArtifactStore {
	case StoreSQLite:
		path := filepath.Join(p.cfg.OutputFolder, sqliteFileName)
		log.Debug("Opening sqlite artifact store at %s", path)
		return videostorage.NewSQLiteStore(path, p.cfg.FrameExt, p.backend)
	default:
		log.Debug("Using directory artifact store at %s", p.cfg.OutputFolder)
		return videostorage.NewDirStore(p.fs, p.cfg.OutputFolder, p.cfg.FrameExt, p.backend), nil
	}
}

func closeStore(store videostorage.Store) {
	if err := store.Close(); err != nil {
		log.Error("unable to close artifact store: %v", err)
	}
}

func outputExt(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}
