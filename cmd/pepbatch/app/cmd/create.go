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

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pep-tk/pepbatch/cmd/pepbatch/app/flags"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/config"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/dataset"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/job"
)

var (
	createPipelineManifest string
	createDatasetManifests []string
	createPipeline         string
	createDatasets         []string
	createSelect           string
	createJob              string
	createForce            bool
	createInteractive      bool
	createParams           = flags.NewKeyValueFlag()
)

// For testing
var askOne = survey.AskOne

// NewCmdCreate describes the CLI command to create a job directory.
func NewCmdCreate(out io.Writer) *cobra.Command {
	return NewCmd(out, "create").
		WithDescription("Create a job from a pipeline and a selection of datasets").
		WithLongDescription("Create compiles the chosen pipeline once per dataset and lays out a job directory\n"+
			"holding the compiled pipelines, the task queue and room for logs and outputs.\n"+
			"The job does not start until it is handed to `pepbatch run`.").
		WithExample("create a job for two Kotz flights", "create -p seal-detector -d Kotz-2019:fl04 -d Kotz-2019:fl05 -j 2021-05-kotz").
		WithExample("select datasets by glob and adjust a parameter", "create -p seal-detector --select 'Kotz-2019:fl*' --set detection_threshold=0.6 -j 2021-05-kotz").
		WithFlags(func(f *pflag.FlagSet) {
			createParams = flags.NewKeyValueFlag()
			f.StringVar(&createPipelineManifest, "pipeline-manifest", "", "Path to the pipeline manifest (defaults to the saved pipeline-manifest)")
			f.StringArrayVar(&createDatasetManifests, "dataset-manifest", nil, "Dataset manifest file or glob, repeatable (defaults to the saved dataset-manifests)")
			f.StringVarP(&createPipeline, "pipeline", "p", "", "Name of the pipeline to run")
			f.StringArrayVarP(&createDatasets, "dataset", "d", nil, "Dataset key to include, repeatable")
			f.StringVar(&createSelect, "select", "", "Glob pattern of dataset keys to include, e.g. 'Kotz-2019:fl*'")
			f.StringVarP(&createJob, "job", "j", "", "Job directory to create, relative names resolve under the saved jobs-root")
			f.BoolVar(&createForce, "force", false, "Delete and recreate the job directory if it already exists")
			f.BoolVarP(&createInteractive, "interactive", "i", false, "Pick the pipeline, datasets and job name interactively")
			f.Var(createParams, "set", "Set a pipeline parameter as name=value, repeatable")
		}).
		NoArgs(doCreate)
}

func doCreate(out io.Writer) error {
	pipelines, err := loadPipelineManifest(createPipelineManifest)
	if err != nil {
		return err
	}
	datasets, err := loadDatasetManifests(createDatasetManifests, false)
	if err != nil {
		return err
	}

	p, err := pickPipeline(pipelines)
	if err != nil {
		return err
	}
	if err := applyParams(p); err != nil {
		return err
	}

	selected, err := pickDatasets(datasets)
	if err != nil {
		return err
	}

	directory, err := pickJobDir()
	if err != nil {
		return err
	}

	state, meta, err := job.CreateJob(directory, p, selected, createForce)
	if err != nil {
		return errors.Wrap(err, "creating job")
	}

	fmt.Fprintf(out, "Created job %s with %d tasks:\n", meta.Root(), state.TotalTasks())
	for _, key := range state.Tasks() {
		fmt.Fprintf(out, " - %s\n", key)
	}
	fmt.Fprintf(out, "Start it with: pepbatch run -j %s\n", meta.Root())
	return nil
}

func pickPipeline(m *config.Manifest) (*config.PipelineConfig, error) {
	name := createPipeline
	if name == "" && createInteractive {
		if err := askOne(&survey.Select{
			Message:  "Choose the pipeline to run",
			Options:  m.Names(),
			PageSize: 15,
		}, &name); err != nil {
			return nil, err
		}
	}
	if name == "" {
		return nil, errors.New("no pipeline given: pass --pipeline or use --interactive")
	}
	p, ok := m.Pipeline(name)
	if !ok {
		return nil, fmt.Errorf("pipeline %q not found in manifest, known pipelines: %v", name, m.Names())
	}
	return p, nil
}

// applyParams writes each --set assignment into the pipeline's parameter
// group, rejecting unknown names and values the parameter type refuses.
func applyParams(p *config.PipelineConfig) error {
	for _, name := range createParams.Keys() {
		value, _ := createParams.Get(name)
		opt, ok := p.Parameters.Option(name)
		if !ok {
			return fmt.Errorf("pipeline %s has no parameter %q", p.Name, name)
		}
		if !opt.SetValue(value) {
			return fmt.Errorf("invalid value %q for parameter %s: expected %s", value, name, opt.Describe())
		}
	}
	return nil
}

func pickDatasets(m *dataset.Manifest) ([]*dataset.Dataset, error) {
	keys := createDatasets
	if createSelect != "" {
		matches, err := m.GlobKeys(createSelect)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no dataset keys match %q", createSelect)
		}
		keys = append(keys, matches...)
	}
	if len(keys) == 0 && createInteractive {
		if err := askOne(&survey.MultiSelect{
			Message:  "Choose the datasets to process",
			Options:  m.Keys(),
			PageSize: 15,
		}, &keys); err != nil {
			return nil, err
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("no datasets selected: pass --dataset or --select, or use --interactive")
	}

	// A key may arrive both by name and by glob.
	seen := map[string]bool{}
	var selected []*dataset.Dataset
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		ds, ok := m.Dataset(key)
		if !ok {
			return nil, fmt.Errorf("dataset %q not found in any manifest", key)
		}
		selected = append(selected, ds)
	}
	return selected, nil
}

func pickJobDir() (string, error) {
	directory := createJob
	if directory == "" && createInteractive {
		if err := askOne(&survey.Input{
			Message: "Name the job directory",
		}, &directory); err != nil {
			return "", err
		}
	}
	if directory == "" {
		return "", errors.New("no job directory given: pass --job or use --interactive")
	}
	return resolveJobDir(directory), nil
}
