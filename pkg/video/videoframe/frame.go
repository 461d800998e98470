package videoframe

import "fmt"

type Dimensions struct {
	W, H int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.W, d.H)
}

// Frame is a single decoded image. DataRef exposes the backend's
// native pixel buffer and is only meaningful to that backend.
type Frame interface {
	DataRef() interface{}
	Dimensions() Dimensions
	Close()
}
