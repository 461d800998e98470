package config

import (
	"github.com/tauraamui/dragonpano/internal/config"
	"github.com/tauraamui/dragonpano/pkg/configdef"
)

type Destroyer interface {
	configdef.Destroyer
}

func DefaultDestroyer() Destroyer {
	return config.DefaultDestroyer()
}
