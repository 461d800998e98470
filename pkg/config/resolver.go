package config

import (
	"github.com/tauraamui/dragonpano/internal/config"
	"github.com/tauraamui/dragonpano/pkg/configdef"
)

type Resolver interface {
	configdef.Resolver
}

func DefaultResolver() Resolver {
	return config.DefaultResolver()
}

func PathResolver(path string) Resolver {
	return config.PathResolver(path)
}

func Defaults() configdef.Values {
	return config.Defaults()
}
