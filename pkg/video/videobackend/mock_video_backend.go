package videobackend

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// MockSettings describes the synthetic stream the mock backend
// produces: a camera panning right across a fixed scene by Shift
// pixels per frame. Frames <= 0 makes the stream endless.
type MockSettings struct {
	FPS    float64
	Frames int
	W, H   int
	Shift  int
}

func DefaultMockSettings() MockSettings {
	return MockSettings{FPS: 30, Frames: 300, W: 320, H: 240, Shift: 2}
}

func MockWithSettings(settings MockSettings) Backend {
	return &mockVideoBackend{settings: settings}
}

type mockVideoBackend struct {
	settings MockSettings
}

func (b *mockVideoBackend) Open(cancel context.Context, addr string) (Stream, error) {
	if err := cancel.Err(); err != nil {
		return nil, xerror.New("video stream open cancelled")
	}
	return &mockVideoStream{settings: b.settings}, nil
}

func (b *mockVideoBackend) NewFrame() videoframe.Frame {
	return &openCVFrame{mat: gocv.NewMat()}
}

func (b *mockVideoBackend) Encode(ext string, frame videoframe.Frame) ([]byte, error) {
	openCVBackend := openCVBackend{}
	return openCVBackend.Encode(ext, frame)
}

func (b *mockVideoBackend) Decode(d []byte) (videoframe.Frame, error) {
	openCVBackend := openCVBackend{}
	return openCVBackend.Decode(d)
}

// scenePanFrames is how many frames of panning an endless stream
// covers before wrapping back to the start of the scene.
const scenePanFrames = 300

type mockVideoStream struct {
	uuid          string
	settings      MockSettings
	index         int
	renderedScene bool
	scene         *image.RGBA
	isClosed      bool
}

func (mvs *mockVideoStream) UUID() string {
	if len(mvs.uuid) == 0 {
		mvs.uuid = uuid.NewString()
	}
	return mvs.uuid
}

func (mvs *mockVideoStream) FPS() float64 {
	return mvs.settings.FPS
}

func (mvs *mockVideoStream) FrameCount() int {
	if mvs.settings.Frames <= 0 {
		return 0
	}
	return mvs.settings.Frames
}

func (mvs *mockVideoStream) Read(frame videoframe.Frame) error {
	frameMatRef, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return xerror.New("must pass OpenCV frame to mock video stream read")
	}

	if mvs.isClosed {
		return io.EOF
	}

	if mvs.settings.Frames > 0 && mvs.index >= mvs.settings.Frames {
		return io.EOF
	}

	if !mvs.renderedScene {
		scene, err := renderScene(mvs.sceneWidth(), mvs.settings.H)
		if err != nil {
			return err
		}
		mvs.scene = scene
		mvs.renderedScene = true
	}

	img := cropScene(mvs.scene, mvs.offset(), mvs.settings.W, mvs.settings.H)
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return xerror.Errorf("unable to convert Go image into OpenCV mat: %w", err)
	}
	defer mat.Close()

	mat.CopyTo(frameMatRef)
	mvs.index++

	return nil
}

func (mvs *mockVideoStream) sceneWidth() int {
	frames := mvs.settings.Frames
	if frames <= 0 {
		frames = scenePanFrames
	}
	return mvs.settings.W + (frames-1)*mvs.settings.Shift
}

func (mvs *mockVideoStream) offset() int {
	span := mvs.sceneWidth() - mvs.settings.W + 1
	return (mvs.index * mvs.settings.Shift) % span
}

func (mvs *mockVideoStream) Close() error {
	mvs.isClosed = true
	mvs.renderedScene = false
	mvs.scene = nil
	return nil
}

func cropScene(scene *image.RGBA, x, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), scene, image.Point{X: x, Y: 0}, draw.Src)
	return dst
}

func renderScene(w, h int) (*image.RGBA, error) {
	r := float64(h) / 2
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	// a row of overlapping circles so every column of the scene is distinguishable
	var circles []*circle
	for cx := 0.0; cx < float64(w)+r; cx += r {
		circles = append(circles, &circle{cx, r / 2, r})
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			c := color.RGBA{0, uint8(x % 256), uint8(y % 256), 255}
			for i, cr := range circles {
				if cr.Brightness(float64(x), float64(y)) == 0 {
					continue
				}
				switch i % 3 {
				case 0:
					c.R = 255
				case 1:
					c.G = 255
				case 2:
					c.B = 255
				}
			}
			img.Set(x, y, c)
		}
	}

	for x := 0; x < w; x += 100 {
		if err := drawText(img, x+5, h-10, fmt.Sprintf("%d", x)); err != nil {
			return nil, xerror.Errorf("unable to draw scene marker onto in-mem image: %w", err)
		}
	}
	return img, nil
}

func drawText(canvas *image.RGBA, x, y int, text string) error {
	fontFace, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return err
	}
	fontDrawer := &font.Drawer{
		Dst: canvas,
		Src: image.White,
		Face: truetype.NewFace(fontFace, &truetype.Options{
			Size:    24,
			Hinting: font.HintingFull,
		}),
		Dot: fixed.P(x, y),
	}
	fontDrawer.DrawString(text)
	return nil
}

type circle struct {
	X, Y, R float64
}

func (c *circle) Brightness(x, y float64) uint8 {
	var dx, dy float64 = c.X - x, c.Y - y
	d := math.Sqrt(dx*dx+dy*dy) / c.R
	if d > 1 {
		return 0
	}
	return 255
}
