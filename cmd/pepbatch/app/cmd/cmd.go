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

package cmd

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/constants"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/settings"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/version"
)

var (
	v       string
	logFile string
)

func NewPepbatchCommand(out, err io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pepbatch",
		Short: "A tool that runs VIAME detection pipelines over batches of image datasets.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := SetUpLogs(err, v); err != nil {
				return err
			}
			logrus.Infof("PEPBatch %+v", version.Get())
			return nil
		},
	}

	rootCmd.SilenceErrors = true
	rootCmd.SetOut(out)
	rootCmd.SetErr(err)

	rootCmd.AddCommand(NewCmdCompletion(out))
	rootCmd.AddCommand(NewCmdVersion(out))
	rootCmd.AddCommand(NewCmdCreate(out))
	rootCmd.AddCommand(NewCmdRun(out))
	rootCmd.AddCommand(NewCmdDatasets(out))
	rootCmd.AddCommand(NewCmdPipelines(out))
	rootCmd.AddCommand(NewCmdJobs(out))
	rootCmd.AddCommand(NewCmdConfig(out))

	rootCmd.PersistentFlags().StringVarP(&v, "verbosity", "v", constants.DefaultLogLevel.String(), "Log level (debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also append logs to this file, rotated at 10MB")
	return rootCmd
}

// SetUpLogs routes logrus to the command's error stream and, when --log-file
// is set, to a size rotated file next to it.
func SetUpLogs(out io.Writer, level string) error {
	if logFile != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	logrus.SetOutput(out)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "parsing log level")
	}
	logrus.SetLevel(lvl)
	return nil
}

// globalSettings returns the user's saved defaults, or an empty config when
// none could be read. A broken settings file must not block commands that
// receive everything they need through flags.
func globalSettings() *settings.GlobalConfig {
	cfg, err := settings.ReadConfigFile("")
	if err != nil {
		return &settings.GlobalConfig{}
	}
	return cfg
}
