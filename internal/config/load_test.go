package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tauraamui/dragonpano/pkg/configdef"
)

const testConfigPath = "/testroot/tacusci/dragonpano/config.json"

type LoadConfigTestSuite struct {
	suite.Suite
	configResolver configdef.Resolver
	fs             afero.Fs
}

func (suite *LoadConfigTestSuite) SetupSuite() {
	suite.fs = afero.NewMemMapFs()
	suite.configResolver = DefaultResolver()
	require.NoError(suite.T(), os.Setenv(configPathEnv, testConfigPath))

	// use in memory FS in implementation for tests
	fs = suite.fs
}

func (suite *LoadConfigTestSuite) TearDownSuite() {
	os.Unsetenv(configPathEnv)
	fs = afero.NewOsFs()
}

func (suite *LoadConfigTestSuite) SetupTest() {
	require.NoError(suite.T(), suite.fs.MkdirAll(filepath.Dir(testConfigPath), os.ModeDir|os.ModePerm))
	suite.overwriteTestConfig(
		`{
			"debug": true,
			"video_path": "/testroot/walk.mp4",
			"sample_rate": 2,
			"order_by": "index"
		}`,
	)
}

func (suite *LoadConfigTestSuite) overwriteTestConfig(config string) {
	require.NoError(suite.T(), afero.WriteFile(suite.fs, testConfigPath, []byte(config), 0666))
}

func (suite *LoadConfigTestSuite) TearDownTest() {
	suite.fs.Remove(testConfigPath)
}

func (suite *LoadConfigTestSuite) TestLoadConfigOverlaysFileOnDefaults() {
	config, err := suite.configResolver.Resolve()
	require.NoError(suite.T(), err)

	expected := Defaults()
	expected.Debug = true
	expected.VideoPath = "/testroot/walk.mp4"
	expected.SampleRate = 2
	expected.OrderBy = "index"
	assert.Equal(suite.T(), expected, config)
}

func (suite *LoadConfigTestSuite) TestLoadConfigWithoutFileUsesDefaults() {
	require.NoError(suite.T(), suite.fs.Remove(testConfigPath))

	config, err := suite.configResolver.Resolve()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), Defaults(), config)
}

func (suite *LoadConfigTestSuite) TestLoadConfigFailsOnInvalidJSON() {
	suite.overwriteTestConfig(`{"debug" true,}`)

	config, err := suite.configResolver.Resolve()
	require.Error(suite.T(), err)
	assert.Empty(suite.T(), config)
	assert.EqualError(suite.T(), err, "parsing configuration error: invalid character 't' after object key")
}

func (suite *LoadConfigTestSuite) TestLoadConfigFailsValidationOnZeroRate() {
	suite.overwriteTestConfig(`{"sample_rate": 0}`)

	config, err := suite.configResolver.Resolve()
	require.Error(suite.T(), err)
	assert.Empty(suite.T(), config)
	assert.EqualError(suite.T(), err, `Validation error in field "SampleRate" of type "int" using validator "gte=1"`)
}

func (suite *LoadConfigTestSuite) TestLoadConfigFailsValidationOnUnknownOutputFormat() {
	suite.overwriteTestConfig(`{"output_path": "panorama.gif"}`)

	_, err := suite.configResolver.Resolve()
	assert.EqualError(suite.T(), err, `validation failed: output path "panorama.gif" must end in one of .jpg, .jpeg, .png`)
}

func (suite *LoadConfigTestSuite) TestPathResolverIgnoresEnvLocation() {
	require.NoError(suite.T(), afero.WriteFile(suite.fs, "/elsewhere/pano.json", []byte(`{"sample_count": 4}`), 0666))
	defer suite.fs.Remove("/elsewhere/pano.json")

	config, err := PathResolver("/elsewhere/pano.json").Resolve()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, config.SampleCount)
	assert.Equal(suite.T(), 1, config.SampleRate)
}

func TestLoadConfigTestSuite(t *testing.T) {
	suite.Run(t, &LoadConfigTestSuite{})
}

func overloadUserConfigDir(overload func() (string, error)) func() {
	userConfigDirRef := userConfigDir
	userConfigDir = overload
	return func() { userConfigDir = userConfigDirRef }
}

func TestResolveConfigPathFromEnv(t *testing.T) {
	os.Setenv(configPathEnv, "test/tacusci/dragonpano/config.json")
	defer os.Unsetenv(configPathEnv)

	path, err := resolveConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "test/tacusci/dragonpano/config.json", path)
}

func TestResolveConfigPathFromUserConfigDir(t *testing.T) {
	resetUserConfigDir := overloadUserConfigDir(func() (string, error) { return "test", nil })
	defer resetUserConfigDir()

	path, err := resolveConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("test", "tacusci", "dragonpano", "config.json"), path)
}

func TestResolveConfigPathFailure(t *testing.T) {
	resetUserConfigDir := overloadUserConfigDir(func() (string, error) {
		return "", errors.New("error resolving user config dir")
	})
	defer resetUserConfigDir()

	_, err := DefaultResolver().Resolve()
	assert.EqualError(t, err, "unable to resolve config.json location: error resolving user config dir")
}
