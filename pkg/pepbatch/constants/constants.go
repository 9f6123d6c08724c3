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

package constants

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultPollFrequency is how often the scheduler samples task progress
	// and checks for cancellation between stdout lines.
	DefaultPollFrequency = 1 * time.Second

	// DefaultProcessWait bounds how long the scheduler waits for `kwiver
	// runner` to exit once its output stream has closed or a kill was sent.
	DefaultProcessWait = 30 * time.Second

	// DefaultMoveRetries is how many 1 Hz attempts are made to relocate the
	// outputs of a cancelled task while the OS may still hold file locks.
	DefaultMoveRetries = 30

	// DefaultSetupScriptPOSIX is the VIAME environment script, relative to
	// the VIAME install directory.
	DefaultSetupScriptPOSIX   = "setup_viame.sh"
	DefaultSetupScriptWindows = "setup_viame.bat"

	DefaultConfigDir  = ".pepbatch"
	DefaultConfigFile = "config"
)

// DefaultLogLevel is the default global verbosity
const DefaultLogLevel = logrus.WarnLevel
