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

package job

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/config"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/dataset"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/pipeline"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

// taskMeta is the persisted per task snapshot in datasets_meta.json. Fields
// are declared in sorted key order so encoded JSON comes out sorted.
type taskMeta struct {
	CompiledPipe string                       `json:"compiled_fp"`
	Dataset      dataset.Dataset              `json:"dataset"`
	Outputs      map[string]config.OptionDict `json:"output_config"`
}

// Task is one runnable unit resolved from job metadata: a compiled pipe
// file, the dataset it consumes and the frozen output snapshot.
type Task struct {
	Key          TaskKey
	CompiledPipe string // relative to the job root
	Dataset      *dataset.Dataset
	Outputs      *config.OutputGroup
}

// JobMeta holds the immutable half of a job: the pipeline snapshot and the
// per task snapshots, mirrored to pipelines_meta.json and
// datasets_meta.json.
type JobMeta struct {
	root     string
	pipeline config.PipelineDict
	tasks    map[TaskKey]taskMeta
}

func newJobMeta(root string) *JobMeta {
	return &JobMeta{root: root, tasks: map[TaskKey]taskMeta{}}
}

// CreateMeta compiles one pipe file per dataset into pipelines/ and
// persists the meta snapshots. The compile environment holds parameters and
// dataset ports only: output filenames are provided per run by the
// scheduler through the child's environment, so their references stay in
// the pipe text.
func (m *JobMeta) CreateMeta(p *config.PipelineConfig, datasets []*dataset.Dataset) error {
	if len(datasets) == 0 {
		return &JobInitError{Reason: "no datasets provided"}
	}
	m.pipeline = p.ToDict()

	for _, ds := range datasets {
		key := ds.FriendlyName()
		if existing, ok := m.tasks[key]; ok {
			return &JobInitError{Reason: fmt.Sprintf("datasets %q and %q share the task key %q", existing.Dataset.Name, ds.Name, key)}
		}

		// Snapshot the output group with [DATASET] expanded and the value
		// locked, so a resumed run cannot recompute it from a changed
		// manifest.
		outputs := p.Outputs.Clone()
		for _, opt := range outputs.Options() {
			opt.Freeze(pipeline.ExpandDataset(opt.Value(), key))
		}

		ports, err := p.Ports.EnvPorts(ds, false)
		if err != nil {
			return err
		}
		env := p.Parameters.EnvPorts()
		for k, v := range ports {
			env[k] = v
		}
		compiled, err := pipeline.Compile(p, env)
		if err != nil {
			return errors.Wrapf(err, "compiling pipeline for %q", key)
		}

		rel := filepath.Join("pipelines", fmt.Sprintf("%s-%s.pipe", key, p.Name))
		if err := util.WriteFile(filepath.Join(m.root, rel), []byte(compiled)); err != nil {
			return errors.Wrapf(err, "writing compiled pipeline for %q", key)
		}

		m.tasks[key] = taskMeta{
			CompiledPipe: rel,
			Dataset:      *ds,
			Outputs:      outputs.ToDict(),
		}
	}

	return m.save()
}

func (m *JobMeta) save() error {
	if err := util.WriteJSONFile(pipelinesMetaFile(m.root), m.pipeline); err != nil {
		return err
	}
	return util.WriteJSONFile(datasetsMetaFile(m.root), m.tasks)
}

// LoadMeta reads the meta snapshots of an existing job directory.
func LoadMeta(root string) (*JobMeta, error) {
	m := newJobMeta(root)
	if err := util.ReadJSONFile(pipelinesMetaFile(root), &m.pipeline); err != nil {
		return nil, &JobInitError{Reason: fmt.Sprintf("unable to load job: reading %s: %v", pipelinesMetaFile(root), err)}
	}
	if err := util.ReadJSONFile(datasetsMetaFile(root), &m.tasks); err != nil {
		return nil, &JobInitError{Reason: fmt.Sprintf("unable to load job: reading %s: %v", datasetsMetaFile(root), err)}
	}
	return m, nil
}

// Keys lists the task keys sorted ascending.
func (m *JobMeta) Keys() []TaskKey {
	keys := make([]TaskKey, 0, len(m.tasks))
	for key := range m.tasks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Task resolves one task from its persisted snapshot.
func (m *JobMeta) Task(key TaskKey) (*Task, error) {
	tm, ok := m.tasks[key]
	if !ok {
		return nil, fmt.Errorf("unknown task %q", key)
	}
	outputs, err := config.NewOutputGroupFromDict(tm.Outputs)
	if err != nil {
		return nil, errors.Wrapf(err, "output snapshot of task %q", key)
	}
	ds := tm.Dataset
	return &Task{Key: key, CompiledPipe: tm.CompiledPipe, Dataset: &ds, Outputs: outputs}, nil
}

// Pipeline returns the persisted pipeline snapshot.
func (m *JobMeta) Pipeline() config.PipelineDict {
	return m.pipeline
}

// Root returns the job directory.
func (m *JobMeta) Root() string {
	return m.root
}

// LogsDir returns the per task log directory.
func (m *JobMeta) LogsDir() string {
	return logsDir(m.root)
}

// PendingOutputsDir returns the directory outputs land in while a task runs.
func (m *JobMeta) PendingOutputsDir() string {
	return pendingOutputsDir(m.root)
}

// SuccessOutputsDir returns the directory outputs of SUCCESS tasks move to.
func (m *JobMeta) SuccessOutputsDir() string {
	return successOutputsDir(m.root)
}

// ErrorOutputsDir returns the directory outputs of failed or cancelled
// tasks move to.
func (m *JobMeta) ErrorOutputsDir() string {
	return errorOutputsDir(m.root)
}

// TaskLogFile returns the task's stdout log path. Task keys are filename
// friendly, so the key embeds directly.
func (m *JobMeta) TaskLogFile(key TaskKey) string {
	return filepath.Join(logsDir(m.root), fmt.Sprintf("kwiver-output-%s.log", key))
}
