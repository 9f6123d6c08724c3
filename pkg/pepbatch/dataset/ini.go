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

package dataset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	ini "gopkg.in/ini.v1"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

var sectionHeader = regexp.MustCompile(`^\s*\[(.+)\]\s*$`)

// readINI parses an INI dataset manifest: one section per dataset, keys are
// the dataset attributes. The ini library silently merges duplicate
// sections, so duplicates are detected with a pre-scan.
func readINI(path string) ([]rawDataset, error) {
	contents, err := util.ReadFile(path)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, line := range strings.Split(string(contents), "\n") {
		m := sectionHeader.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if seen[m[1]] {
			return nil, &DuplicateDatasetNameError{Name: m[1]}
		}
		seen[m[1]] = true
	}

	file, err := ini.Load(contents)
	if err != nil {
		return nil, &InvalidManifestError{Manifest: filepath.Base(path), Err: err}
	}

	var rows []rawDataset
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		attrs := map[string]string{}
		for _, key := range section.Keys() {
			switch key.Name() {
			case AttrThermalImageList, AttrColorImageList, AttrTransformationFile:
				attrs[key.Name()] = key.Value()
			default:
				return nil, &InvalidManifestError{
					Manifest: filepath.Base(path),
					Err:      fmt.Errorf("dataset %q has unknown attribute %q", section.Name(), key.Name()),
				}
			}
		}
		rows = append(rows, rawDataset{name: section.Name(), attrs: attrs})
	}
	return rows, nil
}
