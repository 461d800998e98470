package sampler

import (
	"context"
	"errors"
	"io"
	"math"

	"github.com/tauraamui/dragonpano/pkg/log"
	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

const KindDivision xerror.Kind = "division"

var ErrInvalidSampleRate = errors.New("sample rate yields no usable frame interval")

// Stream is the part of a video stream the sampler consumes.
type Stream interface {
	UUID() string
	FPS() float64
	Read(videoframe.Frame) error
	Close() error
}

// Opener acquires a stream for a video path.
type Opener interface {
	Open(context.Context, string) (Stream, error)
}

// OpenerFunc adapts a function into an Opener.
type OpenerFunc func(context.Context, string) (Stream, error)

func (f OpenerFunc) Open(ctx context.Context, path string) (Stream, error) {
	return f(ctx, path)
}

// Saver persists a sampled frame under its sample index.
type Saver interface {
	Save(index int, frame videoframe.Frame) error
}

type Settings struct {
	// Rate is the number of samples taken per second of source video.
	Rate int
	// MaxFrames stops decoding after this many frames, zero means
	// read until the stream ends.
	MaxFrames int
	// OnFrame is invoked after every decoded frame when set.
	OnFrame func(decoded int)
}

type Result struct {
	FPS           float64
	Interval      int
	FramesDecoded int
	Samples       int
}

type Sampler struct {
	settings Settings
	saver    Saver
	newFrame func() videoframe.Frame
}

func New(settings Settings, saver Saver, newFrame func() videoframe.Frame) *Sampler {
	return &Sampler{settings: settings, saver: saver, newFrame: newFrame}
}

// Interval is how many source frames apart consecutive samples are.
// The source rate is truncated to whole frames per second first.
func Interval(fps float64, rate int) (int, error) {
	if rate <= 0 {
		return 0, xerror.Errorf("%w: rate %d must be positive", ErrInvalidSampleRate, rate).AsKind(KindDivision)
	}
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps < 0 {
		return 0, xerror.Errorf("%w: source fps %v is not usable", ErrInvalidSampleRate, fps).AsKind(KindDivision)
	}
	interval := int(fps) / rate
	if interval == 0 {
		return 0, xerror.Errorf(
			"%w: source fps %d is lower than rate %d", ErrInvalidSampleRate, int(fps), rate,
		).AsKind(KindDivision)
	}
	return interval, nil
}

// SampleVideo opens path, samples it, and always releases the stream.
func (s *Sampler) SampleVideo(ctx context.Context, opener Opener, path string) (Result, error) {
	stream, err := opener.Open(ctx, path)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := stream.Close(); err != nil {
			log.Error("unable to close video stream [%s]: %v", path, err)
		}
	}()

	log.Info("Sampling video [%s] (stream %s)", path, stream.UUID())
	return s.Sample(ctx, stream)
}

// Sample makes a single forward pass over stream, persisting every
// frame whose decode index is a multiple of the interval.
func (s *Sampler) Sample(ctx context.Context, stream Stream) (Result, error) {
	result := Result{FPS: stream.FPS()}
	interval, err := Interval(result.FPS, s.settings.Rate)
	if err != nil {
		return result, err
	}
	result.Interval = interval

	frame := s.newFrame()
	defer frame.Close()

	for decodeIndex := 0; ; decodeIndex++ {
		if err := ctx.Err(); err != nil {
			return result, xerror.Errorf("sampling cancelled after %d frames: %w", result.FramesDecoded, err)
		}

		if s.settings.MaxFrames > 0 && decodeIndex >= s.settings.MaxFrames {
			log.Warn("Stopped sampling at frame limit of %d", s.settings.MaxFrames)
			break
		}

		if err := stream.Read(frame); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return result, xerror.Errorf("unable to read frame %d from stream: %w", decodeIndex, err)
		}
		result.FramesDecoded++

		if decodeIndex%interval == 0 {
			sampleIndex := decodeIndex / interval
			if err := s.saver.Save(sampleIndex, frame); err != nil {
				return result, xerror.Errorf("unable to persist sample %d: %w", sampleIndex, err)
			}
			result.Samples++
		}

		if s.settings.OnFrame != nil {
			s.settings.OnFrame(result.FramesDecoded)
		}
	}

	log.Info("Sampled %d of %d frames at an interval of %d", result.Samples, result.FramesDecoded, result.Interval)
	return result, nil
}
