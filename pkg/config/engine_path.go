package config

import (
	"errors"
	"os"
	"path/filepath"
)

// UserConfigDirectory is overridable for tests, mirroring the usual
// indirection over os.UserConfigDir.
var UserConfigDirectory = os.UserConfigDir

// EnginePath returns the directory and absolute file path of the engine's
// own YAML settings file under the OS user-config root.
func EnginePath() (engineConfigDir string, engineConfigFile string, err error) {
	userConfigDir, err := UserConfigDirectory()
	if err != nil {
		return "", "", errors.New(UserConfigDirectoryNotFoundErrorMessage)
	}
	engineConfigDir = filepath.Join(userConfigDir, EngineConfigDirectory)
	engineConfigFile = filepath.Join(engineConfigDir, EngineConfigFile)
	return engineConfigDir, engineConfigFile, nil
}
