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
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var pipelinesManifest string

// NewCmdPipelines describes the CLI command to list configured pipelines.
func NewCmdPipelines(out io.Writer) *cobra.Command {
	return NewCmd(out, "pipelines").
		WithDescription("List the pipelines in the pipeline manifest and their parameters").
		WithFlags(func(f *pflag.FlagSet) {
			f.StringVar(&pipelinesManifest, "pipeline-manifest", "", "Path to the pipeline manifest (defaults to the saved pipeline-manifest)")
		}).
		NoArgs(doPipelines)
}

func doPipelines(out io.Writer) error {
	m, err := loadPipelineManifest(pipelinesManifest)
	if err != nil {
		return err
	}

	for _, name := range m.Names() {
		p, _ := m.Pipeline(name)
		fmt.Fprintln(out, name)
		for _, opt := range p.Parameters.Options() {
			fmt.Fprintf(out, "  --set %s=%s (%s)", opt.Name, opt.Value(), opt.Describe())
			if opt.Description != "" {
				fmt.Fprintf(out, " %s", opt.Description)
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}
