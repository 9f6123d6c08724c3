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
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pep-tk/pepbatch/cmd/pepbatch/app/flags"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/color"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/constants"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/job"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/scheduler"
)

var (
	runJob         string
	runSetupScript string
	runPollFreq    time.Duration
	runDebugGDB    bool
	runPipeArgs    = flags.NewKeyValueFlag()
)

// NewCmdRun describes the CLI command to run a job's remaining tasks.
func NewCmdRun(out io.Writer) *cobra.Command {
	return NewCmd(out, "run").
		WithDescription("Run every task of a job that has not yet succeeded").
		WithLongDescription("Run drains the job's task queue one task at a time, streaming each pipeline's\n"+
			"output and relocating its files as tasks finish. Interrupting with Ctrl-C kills the\n"+
			"running pipeline; a later `pepbatch run` on the same job picks up where it left off.").
		WithExample("run a job", "run -j 2021-05-kotz").
		WithExample("resume after a crash with a slower progress poll", "run -j 2021-05-kotz --poll-frequency 5s").
		WithFlags(func(f *pflag.FlagSet) {
			runPipeArgs = flags.NewKeyValueFlag()
			f.StringVarP(&runJob, "job", "j", "", "Job directory to run, relative names resolve under the saved jobs-root")
			f.StringVar(&runSetupScript, "setup-script", "", "VIAME setup script sourced before each pipeline (defaults to the saved viame-directory's setup script)")
			f.DurationVar(&runPollFreq, "poll-frequency", constants.DefaultPollFrequency, "How often to poll image list outputs for progress")
			f.Var(runPipeArgs, "pipe-arg", "Extra -s setting passed to every kwiver runner invocation, as key=value, repeatable")
			f.BoolVar(&runDebugGDB, "debug-gdb", false, "Run each pipeline under gdb")
		}).
		NoArgs(doRun)
}

func doRun(out io.Writer) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	catchCtrlC(cancel)

	if runJob == "" {
		return errors.New("no job directory given: pass --job")
	}
	state, meta, err := job.LoadJob(resolveJobDir(runJob))
	if err != nil {
		return errors.Wrap(err, "loading job")
	}

	setupScript := runSetupScript
	if setupScript == "" {
		setupScript = globalSettings().SetupScript()
	}

	s := scheduler.New(state, meta, scheduler.NewCLISink(out), scheduler.Options{
		SetupScript:   setupScript,
		PipeArgs:      runPipeArgs.Values(),
		DebugGDB:      runDebugGDB,
		PollFrequency: runPollFreq,
	})
	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "running job")
	}

	return reportJobResult(out, state)
}

// reportJobResult turns unfinished tasks into a non zero exit so callers
// scripting around pepbatch can tell a clean batch from a dirty one.
func reportJobResult(out io.Writer, state *job.JobState) error {
	failed := len(state.TasksWithStatus(job.StatusError)) + len(state.TasksWithStatus(job.StatusCancelled))
	if failed > 0 {
		return fmt.Errorf("%d of %d tasks did not succeed", failed, state.TotalTasks())
	}
	color.Fprintf(out, color.Green, "All %d tasks completed successfully.\n", state.TotalTasks())
	return nil
}
