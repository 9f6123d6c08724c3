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

package scheduler

import (
	"sync"
	"time"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/job"
)

// EventManager observes a scheduler run. Callbacks must not block: all of
// them run on the scheduler goroutine except UpdateTaskProgress, which the
// progress poller delivers from its own goroutine.
type EventManager interface {
	// InitializeTask announces a task before it runs, or replays a task
	// that completed in an earlier run (outputs is nil unless replaying).
	InitializeTask(key job.TaskKey, count, maxCount int, status job.TaskStatus, outputs []string)
	StartTask(key job.TaskKey)
	EndTask(key job.TaskKey, status job.TaskStatus)

	// CheckCancelled is polled between stdout lines. Returning true makes
	// the scheduler cancel the task and move on to the next one.
	CheckCancelled(key job.TaskKey) bool

	UpdateTaskProgress(key job.TaskKey, count int)
	UpdateTaskStdout(key job.TaskKey, line string)
	UpdateTaskStderr(key job.TaskKey, line string)
	UpdateTaskOutputFiles(key job.TaskKey, files []string)
}

// Tracker is a ready-made EventManager that only keeps the books: per task
// status, progress counts, start and end times and output files. Concrete
// frontends embed it and add their own rendering on top.
type Tracker struct {
	mu          sync.Mutex
	startTime   map[job.TaskKey]time.Time
	endTime     map[job.TaskKey]time.Time
	status      map[job.TaskKey]job.TaskStatus
	count       map[job.TaskKey]int
	maxCount    map[job.TaskKey]int
	initialized []job.TaskKey
	outputFiles map[job.TaskKey][]string

	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		startTime:   map[job.TaskKey]time.Time{},
		endTime:     map[job.TaskKey]time.Time{},
		status:      map[job.TaskKey]job.TaskStatus{},
		count:       map[job.TaskKey]int{},
		maxCount:    map[job.TaskKey]int{},
		outputFiles: map[job.TaskKey][]string{},
		now:         time.Now,
	}
}

func (t *Tracker) InitializeTask(key job.TaskKey, count, maxCount int, status job.TaskStatus, outputs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count[key] = count
	t.maxCount[key] = maxCount
	t.status[key] = status
	t.initialized = append(t.initialized, key)
	if len(outputs) > 0 {
		t.outputFiles[key] = append([]string{}, outputs...)
	}
}

func (t *Tracker) StartTask(key job.TaskKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[key] = job.StatusRunning
	t.startTime[key] = t.now()
}

func (t *Tracker) EndTask(key job.TaskKey, status job.TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endTime[key] = t.now()
	t.status[key] = status
}

// CheckCancelled never cancels. Frontends with a cancel control override it.
func (t *Tracker) CheckCancelled(job.TaskKey) bool {
	return false
}

func (t *Tracker) UpdateTaskProgress(key job.TaskKey, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count[key] = count
}

func (t *Tracker) UpdateTaskStdout(job.TaskKey, string) {}

func (t *Tracker) UpdateTaskStderr(job.TaskKey, string) {}

func (t *Tracker) UpdateTaskOutputFiles(key job.TaskKey, files []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outputFiles[key] = append([]string{}, files...)
}

// Status returns the last status the scheduler reported for the task.
func (t *Tracker) Status(key job.TaskKey) (job.TaskStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	status, ok := t.status[key]
	return status, ok
}

// Progress returns the task's current and maximum image counts.
func (t *Tracker) Progress(key job.TaskKey) (count, maxCount int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count[key], t.maxCount[key]
}

// InitializedTasks lists the tasks announced so far, in announcement order.
func (t *Tracker) InitializedTasks() []job.TaskKey {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]job.TaskKey{}, t.initialized...)
}

// OutputFiles returns the files recorded for the task.
func (t *Tracker) OutputFiles(key job.TaskKey) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.outputFiles[key]...)
}

// ElapsedTime reports how long the task has been running, or its final
// duration once ended. Zero for tasks that never started.
func (t *Tracker) ElapsedTime(key job.TaskKey) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	start, ok := t.startTime[key]
	if !ok {
		return 0
	}
	end, ok := t.endTime[key]
	if !ok {
		return t.now().Sub(start)
	}
	return end.Sub(start)
}
