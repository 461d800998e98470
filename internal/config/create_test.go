package config

import (
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tauraamui/dragonpano/pkg/configdef"
)

type CreateConfigTestSuite struct {
	suite.Suite
	is        *is.I
	creator   configdef.Creator
	destroyer configdef.Destroyer
	fs        afero.Fs
}

func (suite *CreateConfigTestSuite) SetupSuite() {
	suite.is = is.New(suite.T())
	suite.fs = afero.NewMemMapFs()
	suite.creator = DefaultCreator()
	suite.destroyer = DefaultDestroyer()
	require.NoError(suite.T(), os.Setenv(configPathEnv, testConfigPath))

	// use in memory FS in implementation for tests
	fs = suite.fs
}

func (suite *CreateConfigTestSuite) TearDownSuite() {
	os.Unsetenv(configPathEnv)
	fs = afero.NewOsFs()
}

func (suite *CreateConfigTestSuite) TearDownTest() {
	suite.is.NoErr(suite.fs.RemoveAll("/"))
}

func (suite *CreateConfigTestSuite) TestConfigCreate() {
	require.NoError(suite.T(), suite.creator.Create())
	loadedConfig, err := DefaultResolver().Resolve()

	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), Defaults(), loadedConfig)
}

func (suite *CreateConfigTestSuite) TestConfigCreateFailsDueToAlreadyExisting() {
	suite.is.NoErr(suite.creator.Create())
	err := suite.creator.Create()
	suite.is.Equal(err.Error(), "config file already exists")
	suite.is.True(errors.Is(err, configdef.ErrConfigAlreadyExists))
}

func (suite *CreateConfigTestSuite) TestConfigDestroyRemovesFile() {
	suite.is.NoErr(suite.creator.Create())
	suite.is.NoErr(suite.destroyer.Destroy())

	exists, err := afero.Exists(suite.fs, testConfigPath)
	suite.is.NoErr(err)
	suite.is.True(!exists)
}

func (suite *CreateConfigTestSuite) TestConfigDestroyMissingFileFails() {
	err := suite.destroyer.Destroy()
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "unable to delete config file")
}

func (suite *CreateConfigTestSuite) TestConfigCreateOnReadOnlyFsFails() {
	fs = afero.NewReadOnlyFs(afero.NewMemMapFs())
	defer func() { fs = suite.fs }()

	err := suite.creator.Create()
	require.Error(suite.T(), err)
	assert.False(suite.T(), errors.Is(err, configdef.ErrConfigAlreadyExists))
}

func TestCreateConfigTestSuite(t *testing.T) {
	suite.Run(t, &CreateConfigTestSuite{})
}
