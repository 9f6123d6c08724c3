/*
Copyright 2021 The PEPBatch Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package settings

import (
	"path/filepath"
	"runtime"
	"sync"

	"github.com/imdario/mergo"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/constants"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

// GlobalConfig holds the persisted pepbatch defaults kept in the user's home
// directory. Commands fall back to these values for flags the user leaves
// unset.
type GlobalConfig struct {
	// VIAMEDirectory is the root of the VIAME install whose setup script
	// prepares the kwiver environment.
	VIAMEDirectory string `yaml:"viame-directory,omitempty"`

	// PipelineManifest is the default pipeline manifest used by `create`.
	PipelineManifest string `yaml:"pipeline-manifest,omitempty"`

	// DatasetManifests are dataset manifest paths or globs always loaded in
	// addition to the ones given on the command line.
	DatasetManifests []string `yaml:"dataset-manifests,omitempty"`

	// JobsRoot is the directory under which job names are resolved.
	JobsRoot string `yaml:"jobs-root,omitempty"`
}

var (
	// config-file content
	configFile     *GlobalConfig
	configFileErr  error
	configFileOnce sync.Once

	// ReadConfigFile can be swapped out for tests.
	ReadConfigFile = readConfigFileCached

	setupScriptBase = defaultSetupScriptBase()
)

// readConfigFileCached reads the specified file and returns the contents
// parsed into a GlobalConfig struct.
// This function will always return the identical data from the first read.
func readConfigFileCached(filename string) (*GlobalConfig, error) {
	configFileOnce.Do(func() {
		filenameOrDefault, err := ResolveConfigFile(filename)
		if err != nil {
			configFileErr = err
			logrus.Warnf("Could not load pepbatch defaults. Error resolving config file %q", filenameOrDefault)
			return
		}
		configFile, configFileErr = ReadConfigFileNoCache(filenameOrDefault)
		if configFileErr == nil {
			logrus.Infof("Loaded pepbatch defaults from %q", filenameOrDefault)
		}
	})
	return configFile, configFileErr
}

// ResolveConfigFile determines the default config location, if the configFile argument is empty.
func ResolveConfigFile(configFile string) (string, error) {
	if configFile == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", errors.Wrap(err, "retrieving home directory")
		}
		configFile = filepath.Join(home, constants.DefaultConfigDir, constants.DefaultConfigFile)
	}
	return configFile, util.VerifyOrCreateFile(configFile)
}

// ReadConfigFileNoCache reads the given config yaml file and unmarshals the contents.
// Only visible for testing, use ReadConfigFile instead.
func ReadConfigFileNoCache(configFile string) (*GlobalConfig, error) {
	contents, err := util.ReadFile(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "reading global config")
	}
	config := GlobalConfig{}
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return nil, errors.Wrap(err, "unmarshalling global pepbatch config")
	}
	return &config, nil
}

// WriteFullConfig overwrites the config file with the given config.
func WriteFullConfig(configFile string, cfg *GlobalConfig) error {
	contents, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	configFileOrDefault, err := ResolveConfigFile(configFile)
	if err != nil {
		return err
	}
	if err := util.WriteFile(configFileOrDefault, contents); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}

// Overlay fills unset fields of dst with the values from src. Manifest
// lists are appended so configured manifests are always loaded alongside
// the ones given on the command line.
func Overlay(dst, src *GlobalConfig) error {
	if src == nil {
		return nil
	}
	return mergo.Merge(dst, src, mergo.WithAppendSlice)
}

// SetupScript returns the platform's VIAME environment setup script, or an
// empty string when no VIAME directory is configured.
func (c *GlobalConfig) SetupScript() string {
	if c == nil || c.VIAMEDirectory == "" {
		return ""
	}
	return filepath.Join(c.VIAMEDirectory, setupScriptBase)
}

func defaultSetupScriptBase() string {
	if runtime.GOOS == "windows" {
		return constants.DefaultSetupScriptWindows
	}
	return constants.DefaultSetupScriptPOSIX
}
