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

package testutil

import (
	"context"
	"os/exec"
	"sync"
	"testing"
)

// FakeRunnerCommand stands in for the shell invocation that launches
// `kwiver runner`. Each expected launch is replaced by a stub script so
// tests control what the child process prints and which files it writes.
// The scripts that would have run are recorded for assertions.
type FakeRunnerCommand struct {
	t       *testing.T
	mu      sync.Mutex
	stubs   []string
	scripts []string
}

func NewFakeRunnerCommand(t *testing.T) *FakeRunnerCommand {
	return &FakeRunnerCommand{t: t}
}

// AndRun queues one stub script, consumed by the next launch.
func (f *FakeRunnerCommand) AndRun(stub string) *FakeRunnerCommand {
	f.stubs = append(f.stubs, stub)
	return f
}

// CommandContext matches the signature of the runner's command
// constructor. Override it with t.Override.
func (f *FakeRunnerCommand) CommandContext(ctx context.Context, script string) *exec.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.scripts) >= len(f.stubs) {
		f.t.Fatalf("unexpected launch: %s", script)
	}
	stub := f.stubs[len(f.scripts)]
	f.scripts = append(f.scripts, script)

	return exec.CommandContext(ctx, "sh", "-c", stub)
}

// Scripts returns the scripts the scheduler asked to run, in order.
func (f *FakeRunnerCommand) Scripts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.scripts...)
}
