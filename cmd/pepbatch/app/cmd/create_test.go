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

	"github.com/AlecAivazis/survey/v2"

	"github.com/pep-tk/pepbatch/cmd/pepbatch/app/flags"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/job"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/settings"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
	"github.com/pep-tk/pepbatch/testutil"
)

const testPipelines = `PipelineManifest:
  seal-detector:
    path: templates/seal-detector.pipe
    parameters_config:
      detection_threshold:
        default: 0.4
        type: float[0,1]
        env_variable: DETECTION_THRESHOLD
        description: detector confidence cutoff
    output_config:
      detections_csv:
        default: '[DATASET]_detections_[TIMESTAMP].csv'
        type: output_detections_file
        env_variable: OUTPUT_DETECTIONS_CSV
        description: detections file
      image_list:
        default: '[DATASET]_images_[TIMESTAMP].txt'
        type: output_image_list
        env_variable: OUTPUT_IMAGE_LIST
        description: processed images
    dataset_pipeline_adapters:
      thermal_images:
        dataset_attribute: thermal_image_list
        env_variable: THERMAL_IMAGE_LIST
`

const testPipelineTemplate = `config _input
  image_list = $ENV{THERMAL_IMAGE_LIST}
  threshold = $ENV{DETECTION_THRESHOLD}

config _output
  detections = $ENV{OUTPUT_DETECTIONS_CSV}
  image_list = $ENV{OUTPUT_IMAGE_LIST}
`

const testDatasets = `dataset_name,color_image_list,thermal_image_list,transformation_file
Kotz-2019:fl04,,lists/fl04_ir.txt,
Kotz-2019:fl05,,lists/fl05_ir.txt,
`

// writeManifests lays out a pipeline manifest, its template and a dataset
// manifest with two flights under a fresh temp dir.
func writeManifests(t *testutil.T) *testutil.TempDir {
	return t.NewTempDir().
		Write("pipelines.yaml", testPipelines).
		Write("templates/seal-detector.pipe", testPipelineTemplate).
		Write("datasets.csv", testDatasets).
		Write("lists/fl04_ir.txt", "img1.jpg\nimg2.jpg\n").
		Write("lists/fl05_ir.txt", "img1.jpg\nimg2.jpg\nimg3.jpg\n")
}

// overrideCreateFlags points the create command at the temp manifests and
// resets every flag to a known baseline.
func overrideCreateFlags(t *testutil.T, tmpDir *testutil.TempDir) {
	t.Override(&settings.ReadConfigFile, func(string) (*settings.GlobalConfig, error) {
		return &settings.GlobalConfig{JobsRoot: tmpDir.Path("jobs")}, nil
	})
	t.Override(&createPipelineManifest, tmpDir.Path("pipelines.yaml"))
	t.Override(&createDatasetManifests, []string{tmpDir.Path("datasets.csv")})
	t.Override(&createPipeline, "seal-detector")
	t.Override(&createDatasets, []string(nil))
	t.Override(&createSelect, "")
	t.Override(&createJob, "test-job")
	t.Override(&createForce, false)
	t.Override(&createInteractive, false)
	t.Override(&createParams, flags.NewKeyValueFlag())
}

func TestCreate(t *testing.T) {
	testutil.Run(t, "creates a job under the jobs root with one task per dataset", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		overrideCreateFlags(t, tmpDir)
		t.Override(&createDatasets, []string{"Kotz-2019:fl04"})
		t.Override(&createSelect, "Kotz-2019:fl*")

		var out bytes.Buffer
		err := doCreate(&out)

		t.CheckNoError(err)
		t.CheckTrue(job.Exists(tmpDir.Path("jobs/test-job")))
		t.CheckContains("Created job", out.String())
		t.CheckContains(" - Kotz-2019_fl04", out.String())
		t.CheckContains(" - Kotz-2019_fl05", out.String())
		t.CheckContains("pepbatch run -j", out.String())

		state, _, err := job.LoadJob(tmpDir.Path("jobs/test-job"))
		t.CheckNoError(err)
		// fl04 arrived both by key and by glob but is one task
		t.CheckDeepEqual(2, state.TotalTasks())
	})

	testutil.Run(t, "applies --set overrides to the compiled pipelines", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		overrideCreateFlags(t, tmpDir)
		t.Override(&createSelect, "*fl04")
		t.RequireNoError(createParams.Set("detection_threshold=0.6"))

		var out bytes.Buffer
		err := doCreate(&out)

		t.CheckNoError(err)
		pipe, err := util.ReadFile(tmpDir.Path("jobs/test-job/pipelines/Kotz-2019_fl04-seal-detector.pipe"))
		t.CheckNoError(err)
		t.CheckContains("threshold = 0.6", string(pipe))
	})

	testutil.Run(t, "rejects parameters the pipeline does not have", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		overrideCreateFlags(t, tmpDir)
		t.Override(&createDatasets, []string{"Kotz-2019:fl04"})
		t.RequireNoError(createParams.Set("bogus=1"))

		err := doCreate(&bytes.Buffer{})

		t.CheckErrorContains(`has no parameter "bogus"`, err)
	})

	testutil.Run(t, "rejects values the parameter type refuses", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		overrideCreateFlags(t, tmpDir)
		t.Override(&createDatasets, []string{"Kotz-2019:fl04"})
		t.RequireNoError(createParams.Set("detection_threshold=weak"))

		err := doCreate(&bytes.Buffer{})

		t.CheckErrorContains("decimal between 0.0 and 1.0", err)
	})

	testutil.Run(t, "fails on unknown dataset keys and empty selections", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		overrideCreateFlags(t, tmpDir)
		t.Override(&createDatasets, []string{"Kotz-2019:fl99"})

		err := doCreate(&bytes.Buffer{})
		t.CheckErrorContains(`dataset "Kotz-2019:fl99" not found`, err)

		t.Override(&createDatasets, []string(nil))
		err = doCreate(&bytes.Buffer{})
		t.CheckErrorContains("no datasets selected", err)

		t.Override(&createSelect, "Nope:*")
		err = doCreate(&bytes.Buffer{})
		t.CheckErrorContains(`no dataset keys match "Nope:*"`, err)
	})

	testutil.Run(t, "interactive mode asks for anything not given by flags", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		overrideCreateFlags(t, tmpDir)
		t.Override(&createPipeline, "")
		t.Override(&createJob, "")
		t.Override(&createInteractive, true)
		t.Override(&askOne, func(p survey.Prompt, response interface{}, _ ...survey.AskOpt) error {
			switch p.(type) {
			case *survey.Select:
				*(response.(*string)) = "seal-detector"
			case *survey.MultiSelect:
				*(response.(*[]string)) = []string{"Kotz-2019:fl05"}
			case *survey.Input:
				*(response.(*string)) = "picked-job"
			}
			return nil
		})

		var out bytes.Buffer
		err := doCreate(&out)

		t.CheckNoError(err)
		t.CheckTrue(job.Exists(tmpDir.Path("jobs/picked-job")))
		t.CheckContains(" - Kotz-2019_fl05", out.String())
	})

	testutil.Run(t, "an absolute job path ignores the jobs root", func(t *testutil.T) {
		tmpDir := writeManifests(t)
		overrideCreateFlags(t, tmpDir)
		t.Override(&createDatasets, []string{"Kotz-2019:fl04"})
		t.Override(&createJob, tmpDir.Path("elsewhere/abs-job"))

		err := doCreate(&bytes.Buffer{})

		t.CheckNoError(err)
		t.CheckTrue(job.Exists(tmpDir.Path("elsewhere/abs-job")))
		t.CheckFalse(job.Exists(tmpDir.Path("jobs/abs-job")))
	})

	testutil.Run(t, "relative paths resolve against the working directory without saved settings", func(t *testutil.T) {
		tmpDir := writeManifests(t).Chdir()
		overrideCreateFlags(t, tmpDir)
		t.Override(&settings.ReadConfigFile, func(string) (*settings.GlobalConfig, error) {
			return &settings.GlobalConfig{}, nil
		})
		t.Override(&createPipelineManifest, "pipelines.yaml")
		t.Override(&createDatasetManifests, []string{"*.csv"})
		t.Override(&createDatasets, []string{"Kotz-2019:fl04"})
		t.Override(&createJob, "cwd-job")

		err := doCreate(&bytes.Buffer{})

		t.CheckNoError(err)
		t.CheckTrue(job.Exists(tmpDir.Path("cwd-job")))
	})
}
