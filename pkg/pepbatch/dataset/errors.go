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

import "fmt"

// ManifestNotFoundError is returned when the dataset manifest path does not
// point at a file.
type ManifestNotFoundError struct {
	Path string
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("dataset manifest file %q does not exist", e.Path)
}

// ParserNotFoundError is returned for manifest files whose extension matches
// no known parser.
type ParserNotFoundError struct {
	Path string
}

func (e *ParserNotFoundError) Error() string {
	return fmt.Sprintf("invalid manifest file format, can take csv (.csv) format, or ini format (.ini or .cfg): %q", e.Path)
}

// InvalidManifestError wraps a parse failure of a manifest file.
type InvalidManifestError struct {
	Manifest string
	Err      error
}

func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("[%s] invalid manifest: %v", e.Manifest, e.Err)
}

func (e *InvalidManifestError) Unwrap() error { return e.Err }

// MissingDatasetNameError reports a manifest row without a dataset name.
type MissingDatasetNameError struct {
	Row      int
	Manifest string
}

func (e *MissingDatasetNameError) Error() string {
	return fmt.Sprintf("row %d in %s does not have a dataset_name", e.Row, e.Manifest)
}

// DuplicateDatasetNameError reports a dataset name defined more than once,
// within one manifest or across manifests.
type DuplicateDatasetNameError struct {
	Name string
}

func (e *DuplicateDatasetNameError) Error() string {
	return fmt.Sprintf("duplicate dataset_name found %q", e.Name)
}

// NoImageListError reports a dataset with neither a thermal nor a color
// image list.
type NoImageListError struct {
	Manifest string
	Dataset  string
}

func (e *NoImageListError) Error() string {
	return fmt.Sprintf("[%s][%s] ERROR: No color or a thermal image list defined.", e.Manifest, e.Dataset)
}

// DatasetFileNotFoundError reports a dataset attribute whose file does not
// exist on disk. Value carries the path as written in the manifest.
type DatasetFileNotFoundError struct {
	Manifest  string
	Dataset   string
	Attribute string
	Value     string
}

func (e *DatasetFileNotFoundError) Error() string {
	return fmt.Sprintf("[%s][%s] ERROR: File \"%s=%s\" does not exist.", e.Manifest, e.Dataset, e.Attribute, e.Value)
}

// ImageListMissingImageError reports an image referenced by an image list
// that does not exist on disk. Image is the resolved absolute path.
type ImageListMissingImageError struct {
	Manifest  string
	Dataset   string
	Attribute string
	Image     string
}

func (e *ImageListMissingImageError) Error() string {
	return fmt.Sprintf("[%s][%s] ERROR: %q was not found in %s.", e.Manifest, e.Dataset, e.Image, e.Attribute)
}
