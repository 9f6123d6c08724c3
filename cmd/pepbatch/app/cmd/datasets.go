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

	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

var (
	datasetsManifests []string
	datasetsFilter    string
	datasetsSelect    string
	datasetsValidate  bool
)

// NewCmdDatasets describes the CLI command to list dataset keys.
func NewCmdDatasets(out io.Writer) *cobra.Command {
	return NewCmd(out, "datasets").
		WithDescription("List the dataset keys known to the dataset manifests").
		WithExample("list every dataset", "datasets").
		WithExample("list the 2019 Kotz flights", "datasets --select 'Kotz-2019:fl*'").
		WithFlags(func(f *pflag.FlagSet) {
			f.StringArrayVar(&datasetsManifests, "dataset-manifest", nil, "Dataset manifest file or glob, repeatable (defaults to the saved dataset-manifests)")
			f.StringVar(&datasetsFilter, "filter", "", "Only list keys containing this substring")
			f.StringVar(&datasetsSelect, "select", "", "Only list keys matching this glob pattern")
			f.BoolVar(&datasetsValidate, "validate-images", false, "Also check that every image named by each dataset's lists exists")
		}).
		NoArgs(doDatasets)
}

func doDatasets(out io.Writer) error {
	m, err := loadDatasetManifests(datasetsManifests, datasetsValidate)
	if err != nil {
		return err
	}

	keys := m.Keys()
	if datasetsFilter != "" {
		keys = m.FilterKeys(datasetsFilter)
	}
	if datasetsSelect != "" {
		matches, err := m.GlobKeys(datasetsSelect)
		if err != nil {
			return err
		}
		var both []string
		for _, key := range keys {
			if util.StrSliceContains(matches, key) {
				both = append(both, key)
			}
		}
		keys = both
	}

	for _, key := range keys {
		fmt.Fprintln(out, key)
	}
	return nil
}
