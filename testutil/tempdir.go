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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

// TempDir offers actions on a temporary directory that is deleted when
// the test ends.
type TempDir struct {
	t    *testing.T
	root string
}

// NewTempDir creates a temporary directory.
func NewTempDir(t *testing.T) *TempDir {
	root, err := ioutil.TempDir("", "")
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		os.RemoveAll(root)
	})

	return &TempDir{
		t:    t,
		root: root,
	}
}

// Root returns the temp directory.
func (h *TempDir) Root() string {
	return h.root
}

// Chdir changes the current directory to the temp directory for the
// duration of the test.
func (h *TempDir) Chdir() *TempDir {
	pwd, err := os.Getwd()
	if err != nil {
		h.t.Fatal("unable to get current directory")
	}
	if err := os.Chdir(h.root); err != nil {
		h.t.Fatal("unable to change current directory")
	}

	h.t.Cleanup(func() {
		if err := os.Chdir(pwd); err != nil {
			h.t.Fatal("unable to reset current directory")
		}
	})

	return h
}

// Mkdir makes a sub-directory of the temp directory.
func (h *TempDir) Mkdir(dir string) *TempDir {
	if err := os.MkdirAll(h.Path(dir), os.ModePerm); err != nil {
		h.t.Fatal(err)
	}
	return h
}

// Write writes a file with a given content in the temp directory.
func (h *TempDir) Write(file, content string) *TempDir {
	h.failIfErr(os.MkdirAll(filepath.Dir(h.Path(file)), os.ModePerm))
	h.failIfErr(ioutil.WriteFile(h.Path(file), []byte(content), os.ModePerm))
	return h
}

// Touch creates a list of empty files in the temp directory.
func (h *TempDir) Touch(files ...string) *TempDir {
	for _, file := range files {
		h.Write(file, "")
	}
	return h
}

// Remove deletes a file from the temp directory.
func (h *TempDir) Remove(file string) *TempDir {
	h.failIfErr(os.Remove(h.Path(file)))
	return h
}

// Path returns the path to a file in the temp directory.
func (h *TempDir) Path(file string) string {
	elem := []string{h.root}
	dir, name := filepath.Split(filepath.FromSlash(file))
	elem = append(elem, dir, name)
	return filepath.Join(elem...)
}

// Paths returns the paths to a list of files in the temp directory.
func (h *TempDir) Paths(files ...string) []string {
	var paths []string
	for _, file := range files {
		paths = append(paths, h.Path(file))
	}
	return paths
}

// List lists the content of the temp directory.
func (h *TempDir) List() ([]os.FileInfo, error) {
	return ioutil.ReadDir(h.root)
}

func (h *TempDir) failIfErr(err error) {
	if err != nil {
		h.t.Fatal(err)
	}
}
