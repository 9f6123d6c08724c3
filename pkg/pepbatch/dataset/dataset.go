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
	"bufio"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

// Dataset attribute names as they appear in manifests and pipeline port
// adapters.
const (
	AttrThermalImageList   = "thermal_image_list"
	AttrColorImageList     = "color_image_list"
	AttrTransformationFile = "transformation_file"
)

// datasetAttributes lists the optional file attributes in validation order.
var datasetAttributes = []string{AttrColorImageList, AttrThermalImageList, AttrTransformationFile}

// Dataset is one input flight: a name plus up to three files, stored as
// absolute paths once the manifest is validated.
type Dataset struct {
	ColorImageList     string `json:"color_image_list"`
	Name               string `json:"name"`
	ThermalImageList   string `json:"thermal_image_list"`
	TransformationFile string `json:"transformation_file"`
}

// Get looks up an attribute by its manifest name. An attribute is present
// only when it is non-empty and the file exists on disk.
func (d *Dataset) Get(attribute string) (string, bool) {
	var v string
	switch attribute {
	case AttrThermalImageList:
		v = d.ThermalImageList
	case AttrColorImageList:
		v = d.ColorImageList
	case AttrTransformationFile:
		v = d.TransformationFile
	default:
		return "", false
	}
	if v == "" || !util.IsFile(v) {
		return "", false
	}
	return v, true
}

func (d *Dataset) set(attribute, value string) {
	switch attribute {
	case AttrThermalImageList:
		d.ThermalImageList = value
	case AttrColorImageList:
		d.ColorImageList = value
	case AttrTransformationFile:
		d.TransformationFile = value
	}
}

// FriendlyName derives the filename friendly form of the dataset name:
// every rune that is not alphanumeric or a dash becomes an underscore, and
// trailing underscores are trimmed.
func (d *Dataset) FriendlyName() string {
	var b strings.Builder
	for _, r := range d.Name {
		if r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// imageCounts caches line counts per list file so repeated progress setup
// stats each input list once per process.
var imageCounts = util.NewSyncStore()

func countImages(listFile string) int {
	if listFile == "" {
		return 0
	}
	n := imageCounts.Exec(listFile, func() interface{} {
		count, err := util.CountNonEmptyLines(listFile)
		if err != nil {
			logrus.Warnf("counting images in %s: %v", listFile, err)
			return 0
		}
		return count
	})
	return n.(int)
}

// ThermalImageCount returns the number of images in the thermal list, or 0
// when the list is absent or unreadable.
func (d *Dataset) ThermalImageCount() int {
	return countImages(d.ThermalImageList)
}

// ColorImageCount returns the number of images in the color list, or 0 when
// the list is absent or unreadable.
func (d *Dataset) ColorImageCount() int {
	return countImages(d.ColorImageList)
}

// MaxImageCount is the larger of the two image list counts. It bounds task
// progress.
func (d *Dataset) MaxImageCount() int {
	thermal := d.ThermalImageCount()
	color := d.ColorImageCount()
	if thermal > color {
		return thermal
	}
	return color
}

// ReadImageList reads an image list file into a sorted list of absolute
// paths. Relative entries resolve against the list file's directory, blank
// lines are skipped.
func ReadImageList(listFile string) ([]string, error) {
	f, err := util.Fs.Open(listFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	baseDir := filepath.Dir(listFile)
	var images []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(baseDir, line)
		}
		images = append(images, filepath.Clean(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sort.Strings(images)
	return images, nil
}
