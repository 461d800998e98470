package config

import "github.com/tauraamui/dragonpano/pkg/configdef"

func DefaultCreator() configdef.Creator {
	return defaultCreator{}
}

type defaultCreator struct{}

func (d defaultCreator) Create() error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	return create(path)
}
