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
	"bytes"
	"testing"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/config"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/dataset"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/job"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/settings"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
	"github.com/pep-tk/pepbatch/testutil"
)

func TestJobs(t *testing.T) {
	testutil.Run(t, "lists each job with a task status summary", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		manifest, err := config.LoadManifest(tmpDir.Path("pipelines.yaml"))
		t.RequireNoError(err)
		p, _ := manifest.Pipeline("seal-detector")

		fl04 := &dataset.Dataset{Name: "Kotz-2019:fl04", ThermalImageList: tmpDir.Path("lists/fl04_ir.txt")}
		fl05 := &dataset.Dataset{Name: "Kotz-2019:fl05", ThermalImageList: tmpDir.Path("lists/fl05_ir.txt")}

		_, _, err = job.CreateJob(tmpDir.Path("jobs/april"), p, []*dataset.Dataset{fl04}, false)
		t.RequireNoError(err)
		state, _, err := job.CreateJob(tmpDir.Path("jobs/may"), p, []*dataset.Dataset{fl04, fl05}, false)
		t.RequireNoError(err)
		t.RequireNoError(state.SetStatus("Kotz-2019_fl04", job.StatusSuccess))

		t.Override(&jobsRoot, tmpDir.Path("jobs"))

		var out bytes.Buffer
		err = doJobs(&out)

		t.CheckNoError(err)
		t.CheckContains("april\t1 tasks: 1 INITIALIZED", out.String())
		t.CheckContains("may\t2 tasks: 1 SUCCESS, 1 INITIALIZED", out.String())
	})

	testutil.Run(t, "listing never rewrites a job's state file", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		manifest, err := config.LoadManifest(tmpDir.Path("pipelines.yaml"))
		t.RequireNoError(err)
		p, _ := manifest.Pipeline("seal-detector")

		fl04 := &dataset.Dataset{Name: "Kotz-2019:fl04", ThermalImageList: tmpDir.Path("lists/fl04_ir.txt")}
		state, _, err := job.CreateJob(tmpDir.Path("jobs/crashed"), p, []*dataset.Dataset{fl04}, false)
		t.RequireNoError(err)
		// a run that died mid task leaves RUNNING on disk
		t.RequireNoError(state.SetStatus("Kotz-2019_fl04", job.StatusRunning))

		stateFile := tmpDir.Path("jobs/crashed/meta/job_state.json")
		before, err := util.ReadFile(stateFile)
		t.RequireNoError(err)

		t.Override(&jobsRoot, tmpDir.Path("jobs"))

		var out bytes.Buffer
		t.CheckNoError(doJobs(&out))
		t.CheckContains("crashed\t1 tasks: 1 RUNNING", out.String())

		after, err := util.ReadFile(stateFile)
		t.CheckNoError(err)
		t.CheckDeepEqual(string(before), string(after))
	})

	testutil.Run(t, "an empty root prints a notice", func(t *testutil.T) {
		tmpDir := t.NewTempDir()
		t.Override(&jobsRoot, tmpDir.Root())

		var out bytes.Buffer
		err := doJobs(&out)

		t.CheckNoError(err)
		t.CheckContains("No jobs found under", out.String())
	})

	testutil.Run(t, "requires a jobs root", func(t *testutil.T) {
		t.Override(&settings.ReadConfigFile, func(string) (*settings.GlobalConfig, error) {
			return &settings.GlobalConfig{}, nil
		})
		t.Override(&jobsRoot, "")

		err := doJobs(&bytes.Buffer{})

		t.CheckErrorContains("no jobs root given", err)
	})
}
