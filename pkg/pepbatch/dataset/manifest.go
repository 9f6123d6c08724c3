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
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

// Manifest accumulates datasets across one or more manifest files. Names
// must be unique across all loaded files.
type Manifest struct {
	datasets map[string]*Dataset
	names    []string
}

// rawDataset is one parsed manifest entry before validation, attribute
// values as written in the file.
type rawDataset struct {
	name  string
	attrs map[string]string
}

func NewManifest() *Manifest {
	return &Manifest{
		datasets: map[string]*Dataset{},
	}
}

// Load reads one manifest file, picking the parser by extension (.csv, or
// .ini/.cfg), validates every dataset, and adds them to the manifest. With
// fullcheck set, every image referenced by an image list must exist.
// Nothing is added when any dataset in the file fails validation.
func (m *Manifest) Load(path string, fullcheck bool) error {
	if !util.IsFile(path) {
		return &ManifestNotFoundError{Path: path}
	}

	var rows []rawDataset
	var err error
	switch filepath.Ext(path) {
	case ".csv":
		rows, err = readCSV(path)
	case ".ini", ".cfg":
		rows, err = readINI(path)
	default:
		return &ParserNotFoundError{Path: path}
	}
	if err != nil {
		return err
	}

	return m.validate(path, rows, fullcheck)
}

func (m *Manifest) validate(manifestPath string, rows []rawDataset, fullcheck bool) error {
	manifestDir := filepath.Dir(manifestPath)
	manifestName := filepath.Base(manifestPath)

	seen := map[string]bool{}
	for _, row := range rows {
		if seen[row.name] || m.datasets[row.name] != nil {
			return &DuplicateDatasetNameError{Name: row.name}
		}
		seen[row.name] = true
	}

	var staged []*Dataset
	for _, row := range rows {
		if row.attrs[AttrThermalImageList] == "" && row.attrs[AttrColorImageList] == "" {
			return &NoImageListError{Manifest: manifestName, Dataset: row.name}
		}

		ds := &Dataset{Name: row.name}
		for _, attr := range datasetAttributes {
			value := row.attrs[attr]
			if value == "" {
				continue
			}
			abs := pathToAbsolute(manifestDir, value)
			if !util.IsFile(abs) {
				return &DatasetFileNotFoundError{
					Manifest:  manifestName,
					Dataset:   row.name,
					Attribute: attr,
					Value:     value,
				}
			}
			if fullcheck && (attr == AttrThermalImageList || attr == AttrColorImageList) {
				if err := checkImages(manifestName, row.name, attr, abs); err != nil {
					return err
				}
			}
			ds.set(attr, abs)
		}
		staged = append(staged, ds)
	}

	for _, ds := range staged {
		m.datasets[ds.Name] = ds
		m.names = append(m.names, ds.Name)
	}
	return nil
}

func checkImages(manifestName, datasetName, attr, listFile string) error {
	images, err := ReadImageList(listFile)
	if err != nil {
		return err
	}
	for _, image := range images {
		if !util.IsFile(image) {
			return &ImageListMissingImageError{
				Manifest:  manifestName,
				Dataset:   datasetName,
				Attribute: attr,
				Image:     image,
			}
		}
	}
	return nil
}

// Keys lists the dataset names in load order.
func (m *Manifest) Keys() []string {
	keys := make([]string, len(m.names))
	copy(keys, m.names)
	return keys
}

// FilterKeys lists the dataset names containing the given substring.
func (m *Manifest) FilterKeys(substring string) []string {
	var keys []string
	for _, name := range m.names {
		if strings.Contains(name, substring) {
			keys = append(keys, name)
		}
	}
	return keys
}

// GlobKeys lists the dataset names matching a glob pattern.
func (m *Manifest) GlobKeys(pattern string) ([]string, error) {
	var keys []string
	for _, name := range m.names {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if ok {
			keys = append(keys, name)
		}
	}
	return keys, nil
}

// Dataset returns the dataset with the given name.
func (m *Manifest) Dataset(name string) (*Dataset, bool) {
	ds, ok := m.datasets[name]
	return ds, ok
}

// Len returns the number of loaded datasets.
func (m *Manifest) Len() int {
	return len(m.names)
}

func pathToAbsolute(cwd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}
