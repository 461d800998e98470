package config

import (
	"github.com/tauraamui/dragonpano/pkg/configdef"
)

func DefaultResolver() configdef.Resolver {
	return pathResolver{resolve: resolveConfigPath}
}

// PathResolver loads from an explicit config file path.
func PathResolver(path string) configdef.Resolver {
	return pathResolver{resolve: func() (string, error) { return path, nil }}
}

type pathResolver struct {
	resolve func() (string, error)
}

func (r pathResolver) Resolve() (configdef.Values, error) {
	path, err := r.resolve()
	if err != nil {
		return configdef.Values{}, err
	}
	return load(path)
}
