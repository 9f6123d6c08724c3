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

// Package kwiver launches `kwiver runner` child processes. The runner
// binary only exists inside a VIAME install, so every invocation sources
// the install's setup script first and runs under a shell.
package kwiver

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sort"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

// CommandContext builds the shell invocation for a rendered runner script.
// Tests replace it to substitute stub processes.
var CommandContext = newShellCommand

func newShellCommand(ctx context.Context, script string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", script)
	}
	return exec.CommandContext(ctx, "/bin/bash", "-c", script)
}

// Runner assembles one `kwiver runner` invocation.
type Runner struct {
	// Pipe is the pipe file to run. A relative path resolves against Dir.
	Pipe string

	// Dir is the child's working directory, the job root.
	Dir string

	// Env is overlaid on the current process environment. The pipe text
	// still carries $ENV{} references for output filenames, which kwiver
	// resolves from the environment at run time.
	Env map[string]string

	// PipeArgs become additional `-s key=value` settings.
	PipeArgs map[string]string

	// SetupScript is the VIAME setup_viame.sh (or .bat) to source.
	SetupScript string

	// DebugGDB wraps the POSIX invocation in `gdb --args`.
	DebugGDB bool
}

// Script renders the shell command. On POSIX the environment is echoed
// before the run so the log records what the pipeline saw.
func (r *Runner) Script() string {
	if runtime.GOOS == "windows" {
		cmd := "kwiver.exe runner " + shellquote.Join(r.Pipe) + r.argsSuffix()
		if r.SetupScript == "" {
			return cmd
		}
		return fmt.Sprintf("\"%s\" && %s", r.SetupScript, cmd)
	}

	words := []string{"kwiver", "runner", r.Pipe}
	if r.DebugGDB {
		words = append([]string{"gdb", "--args"}, words...)
	}
	cmd := shellquote.Join(words...) + r.argsSuffix()
	if r.SetupScript == "" {
		return cmd
	}
	return fmt.Sprintf("source %s && printenv && %s", shellquote.Join(r.SetupScript), cmd)
}

// argsSuffix renders the -s settings in sorted key order so the command is
// deterministic.
func (r *Runner) argsSuffix() string {
	keys := make([]string, 0, len(r.PipeArgs))
	for k := range r.PipeArgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var suffix string
	for _, k := range keys {
		suffix += " " + shellquote.Join("-s", fmt.Sprintf("%s=%s", k, r.PipeArgs[k]))
	}
	return suffix
}

// Start launches the child with stderr merged into stdout and returns the
// command plus the merged output stream. The caller owns Wait.
func (r *Runner) Start(ctx context.Context) (*exec.Cmd, io.Reader, error) {
	script := r.Script()
	logrus.Debugln("running", script)

	cmd := CommandContext(ctx, script)
	cmd.Dir = r.Dir
	cmd.Env = util.OverlayEnv(r.Env)
	setProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	logrus.Infof("kwiver runner started (pid: %d)", cmd.Process.Pid)
	return cmd, stdout, nil
}

// KillProcessTree forcibly ends a started child and everything it forked.
// Killing an already dead tree returns an error that callers may ignore.
func KillProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return killTree(cmd.Process.Pid)
}
