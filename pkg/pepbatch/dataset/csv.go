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
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

const attrDatasetName = "dataset_name"

// readCSV parses a CSV dataset manifest. The first non-comment row is the
// header; columns are matched by name so their order does not matter.
func readCSV(path string) ([]rawDataset, error) {
	f, err := util.Fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'

	header, err := r.Read()
	if err != nil {
		return nil, &InvalidManifestError{Manifest: filepath.Base(path), Err: err}
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}
	for _, required := range []string{attrDatasetName, AttrThermalImageList, AttrColorImageList, AttrTransformationFile} {
		if _, ok := columns[required]; !ok {
			return nil, &InvalidManifestError{
				Manifest: filepath.Base(path),
				Err:      fmt.Errorf("missing column %q", required),
			}
		}
	}

	var rows []rawDataset
	for i := 0; ; i++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &InvalidManifestError{Manifest: filepath.Base(path), Err: err}
		}

		name := record[columns[attrDatasetName]]
		if name == "" {
			return nil, &MissingDatasetNameError{Row: i, Manifest: path}
		}
		rows = append(rows, rawDataset{
			name: name,
			attrs: map[string]string{
				AttrThermalImageList:   record[columns[AttrThermalImageList]],
				AttrColorImageList:     record[columns[AttrColorImageList]],
				AttrTransformationFile: record[columns[AttrTransformationFile]],
			},
		})
	}
	return rows, nil
}
