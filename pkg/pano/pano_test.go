package pano

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/dragonpano/pkg/configdef"
	"github.com/tauraamui/dragonpano/pkg/stitch"
	"github.com/tauraamui/dragonpano/pkg/video/videobackend"
	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/dragonpano/pkg/video/videostorage"
	"github.com/tauraamui/xerror"
)

func testConfig() configdef.Values {
	return configdef.Values{
		VideoPath:     "./video.mp4",
		VideoBackend:  "mock",
		OutputFolder:  "/testroot/key_frames",
		OutputPath:    "/testroot/out/panorama.jpg",
		SampleRate:    1,
		SampleCount:   9,
		OrderBy:       "width",
		FrameExt:      ".jpg",
		ArtifactStore: StoreDirectory,
	}
}

func TestRunTenSecondMockVideoProducesPanorama(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := New(testConfig(), videobackend.Mock(), WithFs(fs))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, report.Sampling.Samples)
	assert.Equal(t, 30, report.Sampling.Interval)
	assert.Equal(t, 300, report.Sampling.FramesDecoded)
	for i := 0; i < 10; i++ {
		exists, err := afero.Exists(fs, filepath.Join("/testroot/key_frames", videostorage.ArtifactName(i, ".jpg")))
		require.NoError(t, err)
		assert.True(t, exists, "artifact %d", i)
	}

	assert.Empty(t, report.Stitch.Skipped)
	assert.Equal(t, videoframe.Dimensions{W: 1184, H: 240}, report.Stitch.Panorama)
	assert.Equal(t, "/testroot/out/panorama.jpg", report.Stitch.OutputPath)

	data, err := afero.ReadFile(fs, "/testroot/out/panorama.jpg")
	require.NoError(t, err)
	decoded, err := videobackend.Mock().Decode(data)
	require.NoError(t, err)
	defer decoded.Close()
	assert.Equal(t, videoframe.Dimensions{W: 1184, H: 240}, decoded.Dimensions())
}

func TestRunTwiceIsByteIdentical(t *testing.T) {
	is := is.New(t)
	fs := afero.NewMemMapFs()
	p := New(testConfig(), videobackend.Mock(), WithFs(fs))

	readAll := func() map[string][]byte {
		contents := map[string][]byte{}
		is.NoErr(afero.Walk(fs, "/testroot", func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			data, err := afero.ReadFile(fs, path)
			contents[path] = data
			return err
		}))
		return contents
	}

	_, err := p.Run(context.Background())
	is.NoErr(err)
	first := readAll()

	_, err = p.Run(context.Background())
	is.NoErr(err)
	second := readAll()

	is.Equal(len(first), 11)
	is.Equal(first, second)
}

func TestRunWithTooFewSamplesFailsWithoutOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testConfig()
	cfg.MaxFrames = 150
	p := New(cfg, videobackend.Mock(), WithFs(fs))

	report, err := p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, stitch.ErrCountMismatch))
	assert.EqualError(t, err, "Kind: COUNT_MISMATCH | unexpected number of images to stitch: expected 9, got 5")
	assert.Equal(t, 5, report.Sampling.Samples)
	assert.Len(t, report.Stitch.Skipped, 4)
	for _, skipped := range report.Stitch.Skipped {
		assert.True(t, errors.Is(skipped.Reason, stitch.ErrDecodeFailure))
	}

	exists, err := afero.Exists(fs, "/testroot/out/panorama.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

type unavailableBackend struct {
	videobackend.Backend
}

func (b unavailableBackend) Open(ctx context.Context, path string) (videobackend.Stream, error) {
	return nil, xerror.Errorf("%w: %s: no such file", videobackend.ErrStreamUnavailable, path).AsKind(videobackend.KindResourceUnavailable)
}

func TestRunOpenFailureIsResourceUnavailable(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := New(testConfig(), unavailableBackend{videobackend.Mock()}, WithFs(fs))

	report, err := p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, videobackend.ErrStreamUnavailable))
	assert.Equal(t, 0, report.Sampling.Samples)

	exists, err := afero.Exists(fs, "/testroot/out/panorama.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStitchWithoutSamplesReportsEverySkip(t *testing.T) {
	is := is.New(t)
	p := New(testConfig(), videobackend.Mock(), WithFs(afero.NewMemMapFs()))

	result, err := p.Stitch()
	is.True(errors.Is(err, stitch.ErrCountMismatch))
	is.Equal(len(result.Skipped), 9)
	is.Equal(result.OutputPath, "")
}

func TestSampleReportsProgressAgainstFrameCount(t *testing.T) {
	is := is.New(t)
	backend := videobackend.MockWithSettings(videobackend.MockSettings{FPS: 10, Frames: 25, W: 64, H: 48, Shift: 2})
	cfg := testConfig()

	var total, last int
	p := New(cfg, backend, WithFs(afero.NewMemMapFs()), WithProgress(func(t int) func(int) {
		total = t
		return func(decoded int) { last = decoded }
	}))

	result, err := p.Sample(context.Background())
	is.NoErr(err)
	is.Equal(total, 25)
	is.Equal(last, 25)
	is.Equal(result.Samples, 3)
}

func TestSampleCancelledContextStopsRun(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(testConfig(), videobackend.Mock(), WithFs(afero.NewMemMapFs()))
	_, err := p.Run(ctx)
	is.True(err != nil)
}

func TestRunWithSQLiteStore(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	cfg := testConfig()
	cfg.ArtifactStore = StoreSQLite
	cfg.FrameExt = ".png"
	cfg.OutputFolder = filepath.Join(dir, "key_frames")
	cfg.OutputPath = filepath.Join(dir, "panorama.png")
	cfg.OrderBy = "index"

	fs := afero.NewOsFs()
	p := New(cfg, videobackend.Mock(), WithFs(fs))

	report, err := p.Run(context.Background())
	is.NoErr(err)
	is.Equal(report.Stitch.Panorama, videoframe.Dimensions{W: 1184, H: 240})

	exists, err := afero.Exists(fs, filepath.Join(cfg.OutputFolder, "samples.db"))
	is.NoErr(err)
	is.True(exists)

	exists, err = afero.Exists(fs, filepath.Join(cfg.OutputFolder, videostorage.ArtifactName(0, ".png")))
	is.NoErr(err)
	is.True(!exists)
}

func TestOutputExt(t *testing.T) {
	is := is.New(t)
	is.Equal(outputExt("pano.JPEG"), ".jpg")
	is.Equal(outputExt("pano.jpg"), ".jpg")
	is.Equal(outputExt("out/pano.png"), ".png")
}
