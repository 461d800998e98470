package configdef

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/dealancer/validate.v2"
)

type Values struct {
	Debug         bool   `json:"debug"`
	VideoPath     string `json:"video_path" validate:"empty=false"`
	VideoBackend  string `json:"video_backend" validate:"one_of=opencv,mock"`
	OutputFolder  string `json:"output_folder" validate:"empty=false"`
	OutputPath    string `json:"output_path" validate:"empty=false"`
	SampleRate    int    `json:"sample_rate" validate:"gte=1"`
	SampleCount   int    `json:"sample_count" validate:"gte=1"`
	OrderBy       string `json:"order_by" validate:"one_of=width,index"`
	FrameExt      string `json:"frame_extension" validate:"one_of=.jpg,.png"`
	MaxFrames     int    `json:"max_frames" validate:"gte=0"`
	ArtifactStore string `json:"artifact_store" validate:"one_of=directory,sqlite"`
}

var outputExtensions = []string{".jpg", ".jpeg", ".png"}

func (v Values) RunValidate() error {
	if err := validate.Validate(v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %s"
	if len(v.OutputPath) > 0 && !hasOutputExtension(v.OutputPath) {
		return fmt.Errorf(validationErrorHeader,
			fmt.Sprintf("output path %q must end in one of %s", v.OutputPath, strings.Join(outputExtensions, ", ")),
		)
	}
	return nil
}

func hasOutputExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range outputExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
