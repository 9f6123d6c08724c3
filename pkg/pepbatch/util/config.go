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

package util

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Fs is the underlying filesystem to use for reading pepbatch project files & configuration. OS FS by default.
var Fs = afero.NewOsFs()

// ReadFile reads the given file, resolving relative paths against the
// current working directory.
func ReadFile(filename string) ([]byte, error) {
	if !filepath.IsAbs(filename) {
		dir, err := os.Getwd()
		if err != nil {
			return []byte{}, err
		}
		filename = filepath.Join(dir, filename)
	}
	return afero.ReadFile(Fs, filename)
}

// WriteFile writes data to the given file, resolving relative paths against
// the current working directory.
func WriteFile(filename string, data []byte) error {
	if !filepath.IsAbs(filename) {
		dir, err := os.Getwd()
		if err != nil {
			return err
		}
		filename = filepath.Join(dir, filename)
	}
	return afero.WriteFile(Fs, filename, data, 0644)
}
