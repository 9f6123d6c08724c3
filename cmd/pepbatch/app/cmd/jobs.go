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
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/job"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/settings"
)

var jobsRoot string

// NewCmdJobs describes the CLI command to list jobs and their progress.
func NewCmdJobs(out io.Writer) *cobra.Command {
	return NewCmd(out, "jobs").
		WithDescription("List the jobs under the jobs root with their task progress").
		WithFlags(func(f *pflag.FlagSet) {
			f.StringVar(&jobsRoot, "jobs-root", "", "Directory to scan for jobs (defaults to the saved jobs-root)")
		}).
		NoArgs(doJobs)
}

func doJobs(out io.Writer) error {
	root := effectiveSettings(settings.GlobalConfig{JobsRoot: jobsRoot}).JobsRoot
	if root == "" {
		return errors.New("no jobs root given: pass --jobs-root or run `pepbatch config set jobs-root <path>`")
	}

	found := 0
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() || !job.Exists(path) {
				return nil
			}
			found++
			name, err := filepath.Rel(root, path)
			if err != nil || name == "." {
				name = filepath.Base(path)
			}
			keys, statuses, err := job.StateSummary(path)
			if err != nil {
				logrus.Warnf("skipping %s: %v", path, err)
			} else {
				fmt.Fprintf(out, "%s\t%s\n", name, summarizeStatuses(keys, statuses))
			}
			// A job never nests another job.
			return filepath.SkipDir
		},
		Unsorted: false,
	})
	if err != nil {
		return errors.Wrap(err, "scanning jobs root")
	}
	if found == 0 {
		fmt.Fprintf(out, "No jobs found under %s\n", root)
	}
	return nil
}

func summarizeStatuses(keys []job.TaskKey, statuses map[job.TaskKey]job.TaskStatus) string {
	counts := map[job.TaskStatus]int{}
	for _, key := range keys {
		counts[statuses[key]]++
	}

	var parts []string
	for _, status := range []job.TaskStatus{job.StatusSuccess, job.StatusRunning, job.StatusError, job.StatusCancelled, job.StatusInitialized} {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	return fmt.Sprintf("%d tasks: %s", len(keys), strings.Join(parts, ", "))
}
