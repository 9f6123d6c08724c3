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
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/config"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/dataset"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/settings"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

// effectiveSettings overlays the values given on the command line over the
// user's saved defaults: flags win for single values, manifest lists are
// combined.
func effectiveSettings(flagged settings.GlobalConfig) *settings.GlobalConfig {
	if err := settings.Overlay(&flagged, globalSettings()); err != nil {
		logrus.Warnf("applying saved defaults: %v", err)
	}
	return &flagged
}

// loadPipelineManifest reads the pipeline manifest named by the flag, falling
// back to the one saved with `pepbatch config set pipeline-manifest`.
func loadPipelineManifest(path string) (*config.Manifest, error) {
	path = effectiveSettings(settings.GlobalConfig{PipelineManifest: path}).PipelineManifest
	if path == "" {
		return nil, errors.New("no pipeline manifest given: pass --pipeline-manifest or run `pepbatch config set pipeline-manifest <path>`")
	}
	m, err := config.LoadManifest(path)
	if err != nil {
		return nil, errors.Wrap(err, "loading pipeline manifest")
	}
	return m, nil
}

// loadDatasetManifests reads every dataset manifest named by the flags plus
// the saved defaults into a single manifest. Paths may be globs.
func loadDatasetManifests(paths []string, fullcheck bool) (*dataset.Manifest, error) {
	paths = effectiveSettings(settings.GlobalConfig{DatasetManifests: paths}).DatasetManifests
	if len(paths) == 0 {
		return nil, errors.New("no dataset manifests given: pass --dataset-manifest or run `pepbatch config set dataset-manifests <path>`")
	}

	files, err := util.ExpandPathsGlob(".", paths)
	if err != nil {
		return nil, errors.Wrap(err, "expanding dataset manifest paths")
	}

	m := dataset.NewManifest()
	for _, file := range files {
		if err := m.Load(file, fullcheck); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// resolveJobDir resolves a relative job name under the saved jobs-root, so
// `--job 2021-05-kotz` works from any working directory once the root is
// configured. Absolute paths are kept as given.
func resolveJobDir(dir string) string {
	root := globalSettings().JobsRoot
	if root == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}
