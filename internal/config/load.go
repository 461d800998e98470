package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tauraamui/dragonpano/pkg/configdef"
	"github.com/tauraamui/dragonpano/pkg/log"
	"github.com/tauraamui/xerror"
)

const (
	vendorName     = "tacusci"
	appName        = "dragonpano"
	configFileName = "config.json"
	configPathEnv  = "DRAGON_PANO_CONFIG"
)

var fs afero.Fs = afero.NewOsFs()

func load(configPath string) (configdef.Values, error) {
	values := Defaults()

	log.Info("Resolved config file location: %s", configPath)
	file, err := readConfigFile(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return configdef.Values{}, xerror.Errorf("unable to read config file %s: %w", configPath, err)
		}
		log.Info("No config file found at %s, using defaults", configPath)
	} else if err := unmarshal(file, &values); err != nil {
		return configdef.Values{}, err
	}

	if err := values.RunValidate(); err != nil {
		return configdef.Values{}, err
	}

	return values, nil
}

var readConfigFile = func(path string) ([]byte, error) {
	return afero.ReadFile(fs, path)
}

func unmarshal(content []byte, values *configdef.Values) error {
	err := json.Unmarshal(content, values)
	if err != nil {
		return pkgerrors.Errorf("parsing configuration error: %v", err)
	}
	return nil
}

func resolveConfigPath() (string, error) {
	configPath := os.Getenv(configPathEnv)
	if len(configPath) > 0 {
		return configPath, nil
	}

	configParentDir, err := userConfigDir()
	if err != nil {
		return "", xerror.Errorf("unable to resolve %s location: %w", configFileName, err)
	}

	return filepath.Join(
		configParentDir,
		vendorName,
		appName,
		configFileName), nil
}

var userConfigDir = func() (string, error) {
	return os.UserConfigDir()
}
