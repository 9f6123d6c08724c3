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

// Package job owns the on-disk layout of a batch job: compiled pipelines,
// per-task metadata snapshots, the task state file and the output
// directories tasks move through.
package job

import (
	"fmt"
	"path/filepath"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/config"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/dataset"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

// JobInitError reports a job directory that cannot be created or loaded.
type JobInitError struct {
	Reason string
}

func (e *JobInitError) Error() string {
	return e.Reason
}

func metaDir(root string) string {
	return filepath.Join(root, "meta")
}

func pipelinesDir(root string) string {
	return filepath.Join(root, "pipelines")
}

func logsDir(root string) string {
	return filepath.Join(root, "logs")
}

func pendingOutputsDir(root string) string {
	return filepath.Join(root, "outputs_pending")
}

func successOutputsDir(root string) string {
	return filepath.Join(root, "outputs_success")
}

func errorOutputsDir(root string) string {
	return filepath.Join(root, "outputs_error")
}

func stateFile(root string) string {
	return filepath.Join(metaDir(root), "job_state.json")
}

func pipelinesMetaFile(root string) string {
	return filepath.Join(metaDir(root), "pipelines_meta.json")
}

func datasetsMetaFile(root string) string {
	return filepath.Join(metaDir(root), "datasets_meta.json")
}

// CreateJob builds a new job directory: six subdirectories, one compiled
// pipeline per dataset, the meta snapshots and the initial task state.
// The directory must not exist unless force is set. Any failure after the
// directory check removes everything created so far.
func CreateJob(directory string, p *config.PipelineConfig, datasets []*dataset.Dataset, force bool) (*JobState, *JobMeta, error) {
	if util.IsDir(directory) || util.IsFile(directory) {
		if !force {
			return nil, nil, &JobInitError{Reason: fmt.Sprintf("job directory %s already exists", directory)}
		}
		if err := util.Fs.RemoveAll(directory); err != nil {
			return nil, nil, err
		}
	}

	// The rollback must never run for a directory this call did not
	// create, so it is installed only after the existence check.
	rollback := true
	defer func() {
		if rollback {
			_ = util.Fs.RemoveAll(directory)
		}
	}()

	for _, dir := range []string{
		directory,
		metaDir(directory),
		pipelinesDir(directory),
		logsDir(directory),
		pendingOutputsDir(directory),
		successOutputsDir(directory),
		errorOutputsDir(directory),
	} {
		if err := util.Fs.MkdirAll(dir, 0755); err != nil {
			return nil, nil, err
		}
	}

	meta := newJobMeta(directory)
	if err := meta.CreateMeta(p, datasets); err != nil {
		return nil, nil, err
	}
	state, err := NewJobState(directory, meta.Keys())
	if err != nil {
		return nil, nil, err
	}

	rollback = false
	return state, meta, nil
}

// LoadJob loads the state and metadata of an existing job directory.
func LoadJob(directory string) (*JobState, *JobMeta, error) {
	state, err := LoadState(directory)
	if err != nil {
		return nil, nil, err
	}
	meta, err := LoadMeta(directory)
	if err != nil {
		return nil, nil, err
	}
	return state, meta, nil
}

// Exists reports whether directory holds a job. The check is read only:
// LoadState would coerce interrupted statuses and rewrite the state file,
// which a job listing must never do.
func Exists(directory string) bool {
	_, _, err := StateSummary(directory)
	return err == nil
}
