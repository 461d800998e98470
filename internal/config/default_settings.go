package config

import "github.com/tauraamui/dragonpano/pkg/configdef"

type defaultSettingKey uint

const (
	VIDEOPATH     defaultSettingKey = 0x0
	VIDEOBACKEND  defaultSettingKey = 0x1
	OUTPUTFOLDER  defaultSettingKey = 0x2
	OUTPUTPATH    defaultSettingKey = 0x3
	SAMPLERATE    defaultSettingKey = 0x4
	SAMPLECOUNT   defaultSettingKey = 0x5
	ORDERBY       defaultSettingKey = 0x6
	FRAMEEXT      defaultSettingKey = 0x7
	ARTIFACTSTORE defaultSettingKey = 0x8
)

var defaultSettings = map[defaultSettingKey]interface{}{
	VIDEOPATH:     "./video.mp4",
	VIDEOBACKEND:  "opencv",
	OUTPUTFOLDER:  "key_frames",
	OUTPUTPATH:    "panorama.jpg",
	SAMPLERATE:    1,
	SAMPLECOUNT:   9,
	ORDERBY:       "width",
	FRAMEEXT:      ".jpg",
	ARTIFACTSTORE: "directory",
}

// Defaults are the values used for anything a config file leaves out.
func Defaults() configdef.Values {
	return configdef.Values{
		VideoPath:     defaultSettings[VIDEOPATH].(string),
		VideoBackend:  defaultSettings[VIDEOBACKEND].(string),
		OutputFolder:  defaultSettings[OUTPUTFOLDER].(string),
		OutputPath:    defaultSettings[OUTPUTPATH].(string),
		SampleRate:    defaultSettings[SAMPLERATE].(int),
		SampleCount:   defaultSettings[SAMPLECOUNT].(int),
		OrderBy:       defaultSettings[ORDERBY].(string),
		FrameExt:      defaultSettings[FRAMEEXT].(string),
		ArtifactStore: defaultSettings[ARTIFACTSTORE].(string),
	}
}
