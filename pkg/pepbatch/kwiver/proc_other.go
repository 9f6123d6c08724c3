//go:build !windows

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

package kwiver

import (
	"os/exec"
	"syscall"
)

// setProcessGroup gives the child its own process group, so the shell and
// everything the pipeline forks can be signalled together, and a Ctrl-C at
// the terminal reaches the scheduler rather than the pipeline.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killTree(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
