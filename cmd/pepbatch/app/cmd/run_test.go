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
	"runtime"
	"testing"
	"time"

	"github.com/pep-tk/pepbatch/cmd/pepbatch/app/flags"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/config"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/dataset"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/job"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/kwiver"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/settings"
	"github.com/pep-tk/pepbatch/testutil"
)

// newRunTestJob creates a one task job from the temp manifests.
func newRunTestJob(t *testutil.T, tmpDir *testutil.TempDir) string {
	manifest, err := config.LoadManifest(tmpDir.Path("pipelines.yaml"))
	t.RequireNoError(err)
	p, ok := manifest.Pipeline("seal-detector")
	if !ok {
		t.Fatal("pipeline seal-detector not found in test manifest")
	}

	ds := &dataset.Dataset{Name: "Kotz-2019:fl04", ThermalImageList: tmpDir.Path("lists/fl04_ir.txt")}
	_, meta, err := job.CreateJob(tmpDir.Path("jobs/run-job"), p, []*dataset.Dataset{ds}, false)
	t.RequireNoError(err)
	return meta.Root()
}

func overrideRunFlags(t *testutil.T, jobDir string) {
	t.Override(&settings.ReadConfigFile, func(string) (*settings.GlobalConfig, error) {
		return &settings.GlobalConfig{}, nil
	})
	t.Override(&runJob, jobDir)
	t.Override(&runSetupScript, "")
	t.Override(&runPollFreq, 10*time.Millisecond)
	t.Override(&runDebugGDB, false)
	t.Override(&runPipeArgs, flags.NewKeyValueFlag())
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test stubs need a posix shell")
	}

	testutil.Run(t, "drains the queue and reports success", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		jobDir := newRunTestJob(t, tmpDir)
		overrideRunFlags(t, jobDir)

		fake := testutil.NewFakeRunnerCommand(t.T).
			AndRun(`printf 'img1.jpg\nimg2.jpg\n' > "$OUTPUT_IMAGE_LIST" && echo done > "$OUTPUT_DETECTIONS_CSV" && echo processing complete`)
		t.Override(&kwiver.CommandContext, fake.CommandContext)

		var out bytes.Buffer
		err := doRun(&out)

		t.CheckNoError(err)
		t.CheckContains("Running Kotz-2019_fl04...", out.String())
		t.CheckContains("All 1 tasks completed successfully.", out.String())
		t.CheckDeepEqual(1, len(fake.Scripts()))
	})

	testutil.Run(t, "reports unfinished tasks through the exit error", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		jobDir := newRunTestJob(t, tmpDir)
		overrideRunFlags(t, jobDir)

		fake := testutil.NewFakeRunnerCommand(t.T).
			AndRun(`echo no images found 1>&2; exit 2`)
		t.Override(&kwiver.CommandContext, fake.CommandContext)

		var out bytes.Buffer
		err := doRun(&out)

		t.CheckErrorContains("1 of 1 tasks did not succeed", err)
		t.CheckContains("failed after", out.String())
	})

	testutil.Run(t, "requires a job directory", func(t *testutil.T) {
		overrideRunFlags(t, "")

		err := doRun(&bytes.Buffer{})

		t.CheckErrorContains("no job directory given", err)
	})

	testutil.Run(t, "fails cleanly on a missing job", func(t *testutil.T) {
		tmpDir := t.NewTempDir()
		overrideRunFlags(t, tmpDir.Path("missing"))

		err := doRun(&bytes.Buffer{})

		t.CheckErrorContains("loading job", err)
	})
}
