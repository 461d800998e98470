package videobackend

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

type openCVFrame struct {
	isClosed bool
	mat      gocv.Mat
}

// NewFrameFromMat takes ownership of mat, closing the returned
// frame closes the mat.
func NewFrameFromMat(mat gocv.Mat) videoframe.Frame {
	return &openCVFrame{mat: mat}
}

func (frame *openCVFrame) DataRef() interface{} {
	return &frame.mat
}

func (frame *openCVFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{W: frame.mat.Cols(), H: frame.mat.Rows()}
}

func (frame *openCVFrame) Close() {
	if !frame.isClosed {
		frame.mat.Close()
		frame.isClosed = true
	}
}

type openCVBackend struct{}

func (b *openCVBackend) Open(cancel context.Context, addr string) (Stream, error) {
	stream := openCVStream{}
	if err := stream.open(cancel, addr); err != nil {
		return nil, err
	}
	return &stream, nil
}

func (b *openCVBackend) NewFrame() videoframe.Frame {
	return &openCVFrame{mat: gocv.NewMat()}
}

func (b *openCVBackend) Encode(ext string, frame videoframe.Frame) ([]byte, error) {
	mat, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return nil, xerror.New("must pass OpenCV frame to OpenCV encoder")
	}
	if mat.Empty() {
		return nil, xerror.New("cannot encode empty frame")
	}
	return encodeImage(ext, *mat)
}

func (b *openCVBackend) Decode(d []byte) (videoframe.Frame, error) {
	if len(d) == 0 {
		return nil, xerror.New("cannot decode empty image data")
	}
	mat, err := decodeImage(d)
	if err != nil {
		return nil, xerror.Errorf("unable to decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, xerror.New("image data did not decode to any pixels")
	}
	return &openCVFrame{mat: mat}, nil
}

var encodeImage = func(ext string, mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.FileExt(ext), mat)
	if err != nil {
		return nil, xerror.Errorf("unable to encode frame as %s: %w", ext, err)
	}
	defer buf.Close()

	native := buf.GetBytes()
	data := make([]byte, len(native))
	copy(data, native)
	return data, nil
}

var decodeImage = func(d []byte) (gocv.Mat, error) {
	return gocv.IMDecode(d, gocv.IMReadColor)
}

type openCVStream struct {
	uuid   string
	mu     sync.Mutex
	isOpen bool
	vc     *gocv.VideoCapture
}

func (s *openCVStream) open(cancel context.Context, addr string) error {
	streamAndError := make(chan openVideoStreamResult, 1)
	go openVideoStream(addr, streamAndError)
	select {
	case r := <-streamAndError:
		if r.err != nil {
			return xerror.Errorf("%w: %s: %v", ErrStreamUnavailable, addr, r.err).AsKind(KindResourceUnavailable)
		}
		if !r.vc.IsOpened() {
			r.vc.Close()
			return xerror.Errorf("%w: %s", ErrStreamUnavailable, addr).AsKind(KindResourceUnavailable)
		}
		s.vc = r.vc
		s.isOpen = true
		return nil
	case <-cancel.Done():
		go func() {
			if r := <-streamAndError; r.vc != nil {
				r.vc.Close()
			}
		}()
		return xerror.New("video stream open cancelled")
	}
}

type openVideoStreamResult struct {
	vc  *gocv.VideoCapture
	err error
}

func openVideoStream(addr string, d chan openVideoStreamResult) {
	vc, err := openVideoCapture(addr)
	d <- openVideoStreamResult{vc: vc, err: err}
}

var openVideoCapture = func(addr string) (*gocv.VideoCapture, error) {
	return gocv.OpenVideoCapture(addr)
}

var readFromVideoCapture = func(vc *gocv.VideoCapture, mat *gocv.Mat) bool {
	if vc.IsOpened() {
		return vc.Read(mat)
	}
	return false
}

func (s *openCVStream) UUID() string {
	if len(s.uuid) == 0 {
		s.uuid = uuid.NewString()
	}
	return s.uuid
}

func (s *openCVStream) FPS() float64 {
	return s.vc.Get(gocv.VideoCaptureFPS)
}

func (s *openCVStream) FrameCount() int {
	return int(s.vc.Get(gocv.VideoCaptureFrameCount))
}

// Read treats any failed read as the end of the stream, OpenCV does
// not distinguish the two.
func (s *openCVStream) Read(frame videoframe.Frame) error {
	mat, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return xerror.New("must pass OpenCV frame to OpenCV stream read")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isOpen {
		return io.EOF
	}
	if ok := readFromVideoCapture(s.vc, mat); !ok || mat.Empty() {
		return io.EOF
	}
	return nil
}

func (s *openCVStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isOpen {
		return nil
	}
	s.isOpen = false
	return s.vc.Close()
}
