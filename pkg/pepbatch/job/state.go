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
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/version"
)

// TaskKey identifies a task within its job: the filename friendly name of
// the task's dataset.
type TaskKey = string

// TaskStatus is the lifecycle state of one task. The numeric values are the
// persisted representation and must not change.
type TaskStatus int

const (
	StatusInitialized TaskStatus = -1
	StatusError       TaskStatus = 0
	StatusSuccess     TaskStatus = 1
	StatusRunning     TaskStatus = 2
	StatusCancelled   TaskStatus = 3
)

func (s TaskStatus) String() string {
	switch s {
	case StatusInitialized:
		return "INITIALIZED"
	case StatusError:
		return "ERROR"
	case StatusSuccess:
		return "SUCCESS"
	case StatusRunning:
		return "RUNNING"
	case StatusCancelled:
		return "CANCELLED"
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// Complete reports whether the status is terminal.
func (s TaskStatus) Complete() bool {
	return s == StatusSuccess || s == StatusError || s == StatusCancelled
}

// stateData is the persisted form of job_state.json. Fields are declared in
// sorted key order so encoded JSON comes out sorted.
type stateData struct {
	CreatedBy   string                 `json:"created_by,omitempty"`
	Initialized bool                   `json:"initialized"`
	TaskOutputs map[TaskKey][]string   `json:"task_outputs"`
	TaskStatus  map[TaskKey]TaskStatus `json:"task_status"`
	Tasks       []TaskKey              `json:"tasks"`
	TotalTasks  int                    `json:"total_tasks"`
}

// JobState tracks per task status and outputs, mirrored to job_state.json
// on every mutation. A job state has a single writer: the scheduler that
// owns the job directory.
type JobState struct {
	path string
	data stateData
}

// NewJobState initializes the state of a fresh job with every task
// INITIALIZED. It refuses to overwrite an already initialized state file.
func NewJobState(root string, keys []TaskKey) (*JobState, error) {
	s := &JobState{path: stateFile(root)}

	if util.IsFile(s.path) {
		var existing stateData
		if err := util.ReadJSONFile(s.path, &existing); err == nil && existing.Initialized {
			return nil, &JobInitError{Reason: fmt.Sprintf("job state %s already exists and cannot be overridden", s.path)}
		}
	}
	if len(keys) == 0 {
		return nil, &JobInitError{Reason: "no tasks provided"}
	}

	tasks := make([]TaskKey, len(keys))
	copy(tasks, keys)
	sort.Strings(tasks)

	s.data = stateData{
		CreatedBy:   version.Get().Version,
		Initialized: true,
		TaskOutputs: map[TaskKey][]string{},
		TaskStatus:  map[TaskKey]TaskStatus{},
		Tasks:       tasks,
		TotalTasks:  len(tasks),
	}
	for _, key := range tasks {
		s.data.TaskStatus[key] = StatusInitialized
		s.data.TaskOutputs[key] = []string{}
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadState reads the state of an existing job. Any task not in SUCCESS is
// coerced back to INITIALIZED: non terminal states never survive a process
// boundary, so a task interrupted mid run is rerun from scratch.
func LoadState(root string) (*JobState, error) {
	s := &JobState{path: stateFile(root)}

	if !util.IsFile(s.path) {
		return nil, &JobInitError{Reason: fmt.Sprintf("unable to load job: %s does not exist", s.path)}
	}
	if err := util.ReadJSONFile(s.path, &s.data); err != nil {
		return nil, &JobInitError{Reason: fmt.Sprintf("unable to load job: reading %s: %v", s.path, err)}
	}
	if !s.data.Initialized {
		return nil, &JobInitError{Reason: fmt.Sprintf("possibly corrupt job state file: %s", s.path)}
	}
	if creatorIsNewer(s.data.CreatedBy, version.Get().Version) {
		logrus.Warnf("job was created by pepbatch %s, this is pepbatch %s", s.data.CreatedBy, version.Get().Version)
	}

	coerced := false
	for key, status := range s.data.TaskStatus {
		if status != StatusSuccess && status != StatusInitialized {
			s.data.TaskStatus[key] = StatusInitialized
			coerced = true
		}
	}
	if coerced {
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// creatorIsNewer reports whether both version strings parse and created is
// strictly newer than current. Dev builds carry no version and never warn.
func creatorIsNewer(created, current string) bool {
	createdVersion, err := version.ParseVersion(created)
	if err != nil {
		return false
	}
	currentVersion, err := version.ParseVersion(current)
	if err != nil {
		return false
	}
	return createdVersion.GT(currentVersion)
}

func (s *JobState) save() error {
	return util.WriteJSONFile(s.path, s.data)
}

// update applies one mutation and mirrors the result to disk atomically.
func (s *JobState) update(mutate func()) error {
	mutate()
	return s.save()
}

// Status returns the task's status. Unknown keys report INITIALIZED.
func (s *JobState) Status(key TaskKey) TaskStatus {
	status, ok := s.data.TaskStatus[key]
	if !ok {
		return StatusInitialized
	}
	return status
}

// SetStatus transitions the task and persists the change.
func (s *JobState) SetStatus(key TaskKey, status TaskStatus) error {
	if _, ok := s.data.TaskStatus[key]; !ok {
		return fmt.Errorf("unknown task %q", key)
	}
	return s.update(func() {
		s.data.TaskStatus[key] = status
	})
}

// SetOutputs records the task's final output files and persists the change.
func (s *JobState) SetOutputs(key TaskKey, outputs []string) error {
	if _, ok := s.data.TaskOutputs[key]; !ok {
		return fmt.Errorf("unknown task %q", key)
	}
	return s.update(func() {
		s.data.TaskOutputs[key] = append([]string{}, outputs...)
	})
}

// Outputs returns the recorded output files of a task, nil when none were
// recorded yet.
func (s *JobState) Outputs(key TaskKey) []string {
	outputs := s.data.TaskOutputs[key]
	if len(outputs) == 0 {
		return nil
	}
	return append([]string{}, outputs...)
}

// IsTaskComplete reports whether the task reached a terminal status.
func (s *JobState) IsTaskComplete(key TaskKey) bool {
	return s.Status(key).Complete()
}

// IsJobComplete reports whether every task reached a terminal status.
func (s *JobState) IsJobComplete() bool {
	for _, key := range s.data.Tasks {
		if !s.IsTaskComplete(key) {
			return false
		}
	}
	return true
}

// CurrentTask returns the first task in order that is not complete.
func (s *JobState) CurrentTask() (TaskKey, bool) {
	for _, key := range s.data.Tasks {
		if !s.IsTaskComplete(key) {
			return key, true
		}
	}
	return "", false
}

// Tasks lists every task key in execution order.
func (s *JobState) Tasks() []TaskKey {
	return append([]TaskKey{}, s.data.Tasks...)
}

// TasksWithStatus lists the task keys currently in the given status, in
// execution order.
func (s *JobState) TasksWithStatus(status TaskStatus) []TaskKey {
	var keys []TaskKey
	for _, key := range s.data.Tasks {
		if s.Status(key) == status {
			keys = append(keys, key)
		}
	}
	return keys
}

// CompletedTasks lists the task keys that reached a terminal status, in
// execution order.
func (s *JobState) CompletedTasks() []TaskKey {
	var keys []TaskKey
	for _, key := range s.data.Tasks {
		if s.IsTaskComplete(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// TotalTasks returns the number of tasks in the job.
func (s *JobState) TotalTasks() int {
	return s.data.TotalTasks
}

// StateSummary reads a job's persisted statuses without the resume coercion
// LoadState applies, so listings never rewrite another job's state file.
// Keys are returned in execution order.
func StateSummary(root string) ([]TaskKey, map[TaskKey]TaskStatus, error) {
	path := stateFile(root)

	var data stateData
	if err := util.ReadJSONFile(path, &data); err != nil {
		return nil, nil, &JobInitError{Reason: fmt.Sprintf("unable to load job: reading %s: %v", path, err)}
	}
	if !data.Initialized {
		return nil, nil, &JobInitError{Reason: fmt.Sprintf("possibly corrupt job state file: %s", path)}
	}

	statuses := make(map[TaskKey]TaskStatus, len(data.TaskStatus))
	for key, status := range data.TaskStatus {
		statuses[key] = status
	}
	return data.Tasks, statuses, nil
}
