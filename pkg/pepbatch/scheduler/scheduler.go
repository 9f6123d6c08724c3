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

// Package scheduler drains a job's task queue: one `kwiver runner` child at
// a time, with a stdout pump and a progress poller alongside, reporting
// everything to an EventManager.
package scheduler

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/constants"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/job"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/kwiver"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/pipeline"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

// Options tune a scheduler run. Zero values fall back to the defaults in
// the constants package.
type Options struct {
	// SetupScript is the VIAME setup script sourced before every task.
	SetupScript string

	// PipeArgs are extra `-s key=value` settings passed to every task.
	PipeArgs map[string]string

	// DebugGDB runs each task under gdb.
	DebugGDB bool

	// PollFrequency is the progress sampling interval.
	PollFrequency time.Duration

	// ProcessWait bounds how long a child may outlive its output stream or
	// a kill request before it is taken down.
	ProcessWait time.Duration

	// MoveRetries is the number of 1 Hz attempts to relocate the outputs
	// of a cancelled task while the OS may still hold file locks.
	MoveRetries uint64
}

// Scheduler runs a job's tasks sequentially in their persisted order.
type Scheduler struct {
	state   *job.JobState
	meta    *job.JobMeta
	manager EventManager

	setupScript string
	pipeArgs    map[string]string
	debugGDB    bool

	pollFrequency time.Duration
	processWait   time.Duration
	moveRetries   uint64

	// tick is how often the main loop checks for cancellation between
	// stdout lines.
	tick time.Duration

	runID string
}

func New(state *job.JobState, meta *job.JobMeta, manager EventManager, opts Options) *Scheduler {
	if opts.PollFrequency <= 0 {
		opts.PollFrequency = constants.DefaultPollFrequency
	}
	if opts.ProcessWait <= 0 {
		opts.ProcessWait = constants.DefaultProcessWait
	}
	if opts.MoveRetries == 0 {
		opts.MoveRetries = constants.DefaultMoveRetries
	}
	return &Scheduler{
		state:         state,
		meta:          meta,
		manager:       manager,
		setupScript:   opts.SetupScript,
		pipeArgs:      opts.PipeArgs,
		debugGDB:      opts.DebugGDB,
		pollFrequency: opts.PollFrequency,
		processWait:   opts.ProcessWait,
		moveRetries:   opts.MoveRetries,
		tick:          500 * time.Millisecond,
		runID:         uuid.New().String(),
	}
}

// Run replays tasks that completed in an earlier run, announces the rest
// and executes them in order. Cancelling ctx is the kill switch: the
// current child is taken down, every unfinished task ends in ERROR and the
// context's error is returned.
func (s *Scheduler) Run(ctx context.Context) error {
	logrus.Infof("scheduler %s started (pid: %d)", s.runID, os.Getpid())

	if err := s.replayCompleted(); err != nil {
		return err
	}
	for _, key := range s.state.Tasks() {
		if s.state.Status(key) == job.StatusSuccess {
			continue
		}
		task, err := s.meta.Task(key)
		if err != nil {
			return err
		}
		s.manager.InitializeTask(key, 0, task.Dataset.MaxImageCount(), job.StatusInitialized, nil)
	}

	for {
		key, ok := s.state.CurrentTask()
		if !ok {
			return nil
		}
		if err := s.runTask(ctx, key); err != nil {
			return err
		}
	}
}

// replayCompleted re-announces every task that already ended SUCCESS, with
// its recorded outputs and, when the log file survives, its full output
// stream, so an observer can repopulate after a resume.
func (s *Scheduler) replayCompleted() error {
	for _, key := range s.state.TasksWithStatus(job.StatusSuccess) {
		task, err := s.meta.Task(key)
		if err != nil {
			return err
		}
		maxCount := task.Dataset.MaxImageCount()
		s.manager.InitializeTask(key, maxCount, maxCount, job.StatusSuccess, s.state.Outputs(key))

		logFile := s.meta.TaskLogFile(key)
		if !util.IsFile(logFile) {
			continue
		}
		contents, err := util.ReadFile(logFile)
		if err != nil {
			return errors.Wrapf(err, "replaying log of %q", key)
		}
		s.manager.UpdateTaskStdout(key, fmt.Sprintf("Task already complete. Log file found: %s\n", logFile))
		s.manager.UpdateTaskStdout(key, string(contents))
	}
	return nil
}

func (s *Scheduler) runTask(ctx context.Context, key job.TaskKey) error {
	task, err := s.meta.Task(key)
	if err != nil {
		return err
	}

	// Freshly timestamped output filenames under outputs_pending/. They
	// reach the pipeline through the child's environment.
	stamp := time.Now()
	env := pipeline.CompileOutputFilenames(task.Outputs.EnvPorts(), s.meta.PendingOutputsDir(), stamp)

	// Pending outputs in declared order: detection files, then image lists.
	var pendingOutputs []string
	for _, opt := range task.Outputs.DetectionsOptions() {
		pendingOutputs = append(pendingOutputs, env[opt.EnvVariable])
	}
	var monitorFile string
	for i, opt := range task.Outputs.ImageListOptions() {
		if i == 0 {
			// the first image list declared is the progress signal
			monitorFile = env[opt.EnvVariable]
		}
		pendingOutputs = append(pendingOutputs, env[opt.EnvVariable])
	}

	logFile, err := util.Fs.OpenFile(s.meta.TaskLogFile(key), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening log of %q", key)
	}
	// Insurance for every exit path out of this task, including a kill:
	// whatever is still pending belongs in outputs_error/.
	defer func() {
		logFile.Close()
		if _, err := moveOutputFiles(pendingOutputs, s.meta.ErrorOutputsDir()); err != nil {
			logrus.Warnf("relocating stranded outputs of %s: %v", key, err)
		}
	}()

	if err := s.state.SetStatus(key, job.StatusRunning); err != nil {
		return err
	}
	s.manager.StartTask(key)

	runner := kwiver.Runner{
		Pipe:        task.CompiledPipe,
		Dir:         s.meta.Root(),
		Env:         env,
		PipeArgs:    s.pipeArgs,
		SetupScript: s.setupScript,
		DebugGDB:    s.debugGDB,
	}
	cmd, stdout, err := runner.Start(ctx)
	if err != nil {
		return errors.Wrapf(err, "starting task %q", key)
	}

	lines := make(chan string)
	stopPoll := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		// Pump the child's merged output one line at a time: first into
		// the log file, then to the observer, so the log is always the
		// byte-accurate record of what was forwarded.
		defer close(lines)
		reader := bufio.NewReader(stdout)
		for {
			line, rerr := reader.ReadString('\n')
			if line != "" {
				if _, werr := logFile.WriteString(line); werr != nil {
					return errors.Wrap(werr, "writing task log")
				}
				lines <- line
			}
			if rerr != nil {
				return nil
			}
		}
	})
	g.Go(func() error {
		ticker := time.NewTicker(s.pollFrequency)
		defer ticker.Stop()
		for {
			select {
			case <-stopPoll:
				return nil
			case <-ticker.C:
				s.manager.UpdateTaskProgress(key, pollImageList(monitorFile))
			}
		}
	})

	var cancelled bool
	ticker := time.NewTicker(s.tick)
read:
	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			close(stopPoll)
			go drain(lines)
			s.killAllTasks(cmd)
			g.Wait()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				break read
			}
			s.manager.UpdateTaskStdout(key, line)
		case <-ticker.C:
			if s.manager.CheckCancelled(key) {
				cancelled = true
				break read
			}
		}
	}
	ticker.Stop()

	code := s.waitProcess(cmd)
	close(stopPoll)
	go drain(lines)
	if err := g.Wait(); err != nil {
		logrus.Warnf("capturing output of %s: %v", key, err)
	}

	switch {
	case cancelled:
		if err := kwiver.KillProcessTree(cmd); err != nil {
			logrus.Debugf("killing cancelled task %s: %v", key, err)
		}
		logrus.Infof("cancelled %s", key)
		s.manager.UpdateTaskProgress(key, pollImageList(monitorFile))
		if err := s.state.SetStatus(key, job.StatusCancelled); err != nil {
			return err
		}
		s.manager.EndTask(key, job.StatusCancelled)

		// The dying child can hold locks on its output files for a while,
		// so the relocation is retried at 1 Hz.
		if err := s.moveOutputsWithRetry(pendingOutputs, s.meta.ErrorOutputsDir()); err != nil {
			logrus.Warnf("relocating outputs of %s: %v", key, err)
		}

	case code != 0:
		s.manager.UpdateTaskProgress(key, pollImageList(monitorFile))
		if err := s.state.SetStatus(key, job.StatusError); err != nil {
			return err
		}
		s.manager.EndTask(key, job.StatusError)
		if _, err := moveOutputFiles(pendingOutputs, s.meta.ErrorOutputsDir()); err != nil {
			logrus.Warnf("relocating outputs of %s: %v", key, err)
		}

	default:
		// The final count has to be read before the list moves.
		s.manager.UpdateTaskProgress(key, pollImageList(monitorFile))
		moved, err := moveOutputFiles(pendingOutputs, s.meta.SuccessOutputsDir())
		if err != nil {
			return errors.Wrapf(err, "relocating outputs of %q", key)
		}
		if err := s.state.SetOutputs(key, moved); err != nil {
			return err
		}
		if err := s.state.SetStatus(key, job.StatusSuccess); err != nil {
			return err
		}
		s.manager.EndTask(key, job.StatusSuccess)
		s.manager.UpdateTaskOutputFiles(key, moved)
	}
	return nil
}

// killAllTasks fails every unfinished task, the running one included, and
// takes the child down. Used only on the kill switch: a deliberate
// per-task cancel ends in CANCELLED instead.
func (s *Scheduler) killAllTasks(cmd *exec.Cmd) {
	for _, key := range s.state.Tasks() {
		if s.state.IsTaskComplete(key) {
			continue
		}
		if err := s.state.SetStatus(key, job.StatusError); err != nil {
			logrus.Warnf("failing %s: %v", key, err)
		}
		s.manager.EndTask(key, job.StatusError)
	}
	if err := kwiver.KillProcessTree(cmd); err != nil {
		logrus.Debugf("killing kwiver runner: %v", err)
	}
	s.waitProcess(cmd)
}

// waitProcess waits for the child to exit, killing it outright if it
// overstays processWait. Returns the exit code, non-zero for any abnormal
// end.
func (s *Scheduler) waitProcess(cmd *exec.Cmd) int {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return exitCode(cmd, err)
	case <-time.After(s.processWait):
		logrus.Warnf("kwiver runner still up %v after its output closed, killing it", s.processWait)
		if err := kwiver.KillProcessTree(cmd); err != nil {
			logrus.Warnf("killing kwiver runner: %v", err)
		}
		return exitCode(cmd, <-done)
	}
}

func exitCode(cmd *exec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}

// moveOutputsWithRetry relocates output files, retrying at 1 Hz while the
// OS may still be releasing the dying child's file locks.
func (s *Scheduler) moveOutputsWithRetry(files []string, dest string) error {
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), s.moveRetries)
	return backoff.Retry(func() error {
		_, err := moveOutputFiles(files, dest)
		return err
	}, b)
}

// moveOutputFiles relocates each existing file to dest, returning the new
// locations. Missing files are skipped: a task that dies before the
// pipeline starts produces nothing.
func moveOutputFiles(files []string, dest string) ([]string, error) {
	var moved []string
	for _, file := range files {
		if !util.IsFile(file) {
			continue
		}
		target := filepath.Join(dest, filepath.Base(file))
		if err := util.Fs.Rename(file, target); err != nil {
			return moved, err
		}
		moved = append(moved, target)
	}
	return moved, nil
}

// pollImageList counts the images the pipeline has written so far. The
// list may not exist yet.
func pollImageList(file string) int {
	if file == "" || !util.IsFile(file) {
		return 0
	}
	count, err := util.CountNonEmptyLines(file)
	if err != nil {
		logrus.Debugf("polling %s: %v", file, err)
		return 0
	}
	return count
}

// drain unblocks the pump once the scheduler stops forwarding lines; late
// output still reaches the log file.
func drain(lines <-chan string) {
	for range lines {
	}
}
