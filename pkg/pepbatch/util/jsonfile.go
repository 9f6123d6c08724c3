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
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// MarshalJSONIndented marshals v as tab indented UTF-8 JSON with a trailing
// newline. Map keys are emitted in sorted order and HTML characters are left
// unescaped.
func MarshalJSONIndented(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AtomicWriteFile writes data to a temporary file in the target's directory
// and renames it into place, so readers never observe a partial write.
func AtomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(Fs, dir, fmt.Sprintf(".%s-*", filepath.Base(path)))
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		Fs.Remove(tmp.Name())
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Close(); err != nil {
		Fs.Remove(tmp.Name())
		return errors.Wrap(err, "closing temp file")
	}
	if err := Fs.Rename(tmp.Name(), path); err != nil {
		Fs.Remove(tmp.Name())
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}

// WriteJSONFile atomically replaces the file at path with the JSON
// serialization of v.
func WriteJSONFile(path string, v interface{}) error {
	data, err := MarshalJSONIndented(v)
	if err != nil {
		return errors.Wrap(err, "marshalling")
	}
	return AtomicWriteFile(path, data)
}

// ReadJSONFile unmarshals the JSON file at path into v.
func ReadJSONFile(path string, v interface{}) error {
	contents, err := ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(contents, v)
}
