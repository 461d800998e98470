package config

import (
	"github.com/tauraamui/dragonpano/internal/config"
	"github.com/tauraamui/dragonpano/pkg/configdef"
)

type Creator interface {
	configdef.Creator
}

func DefaultCreator() Creator {
	return config.DefaultCreator()
}
