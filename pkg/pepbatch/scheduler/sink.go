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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/segmentio/textio"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/color"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/job"
)

// CLISink renders scheduler events as terminal output. Task output lines
// are indented under the task's banner, status changes are colored.
type CLISink struct {
	*Tracker

	out io.Writer

	mu      sync.Mutex
	writers map[job.TaskKey]*textio.PrefixWriter
}

func NewCLISink(out io.Writer) *CLISink {
	return &CLISink{
		Tracker: NewTracker(),
		out:     out,
		writers: map[job.TaskKey]*textio.PrefixWriter{},
	}
}

func (s *CLISink) InitializeTask(key job.TaskKey, count, maxCount int, status job.TaskStatus, outputs []string) {
	s.Tracker.InitializeTask(key, count, maxCount, status, outputs)
	if status == job.StatusSuccess {
		color.Fprintf(s.out, color.Green, "%s is already complete, skipping.\n", key)
	}
}

func (s *CLISink) StartTask(key job.TaskKey) {
	s.Tracker.StartTask(key)
	color.Fprintf(s.out, color.Default, "Running %s...\n", key)
}

func (s *CLISink) UpdateTaskStdout(key job.TaskKey, line string) {
	fmt.Fprint(s.taskWriter(key), line)
}

func (s *CLISink) UpdateTaskStderr(key job.TaskKey, line string) {
	fmt.Fprint(s.taskWriter(key), line)
}

func (s *CLISink) EndTask(key job.TaskKey, status job.TaskStatus) {
	s.Tracker.EndTask(key, status)
	s.releaseWriter(key)

	count, maxCount := s.Progress(key)
	elapsed := humanize.RelTime(time.Now().Add(-s.ElapsedTime(key)), time.Now(), "elapsed", "elapsed")
	switch status {
	case job.StatusSuccess:
		color.Fprintf(s.out, color.Green, "%s completed %d/%d images (%s).\n", key, count, maxCount, elapsed)
	case job.StatusCancelled:
		color.Fprintf(s.out, color.Yellow, "%s cancelled after %d/%d images (%s).\n", key, count, maxCount, elapsed)
	default:
		color.Fprintf(s.out, color.Red, "%s failed after %d/%d images (%s).\n", key, count, maxCount, elapsed)
	}
}

func (s *CLISink) UpdateTaskOutputFiles(key job.TaskKey, files []string) {
	s.Tracker.UpdateTaskOutputFiles(key, files)
	for _, file := range files {
		fmt.Fprintf(s.out, " - %s\n", file)
	}
}

func (s *CLISink) taskWriter(key job.TaskKey) io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.writers[key]
	if !ok {
		w = textio.NewPrefixWriter(s.out, " - ")
		s.writers[key] = w
	}
	return w
}

// releaseWriter flushes a trailing unterminated line and drops the task's
// prefix writer.
func (s *CLISink) releaseWriter(key job.TaskKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.writers[key]; ok {
		w.Flush()
		delete(s.writers, key)
	}
}
