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

package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Type tags for pipeline output options. Their values are file patterns
// whose extension is validated, stripped on store and re-attached by the
// group's env port accessors.
const (
	TypeOutputImageList      = "output_image_list"
	TypeOutputDetectionsFile = "output_detections_file"
)

var outputExtensions = map[string]string{
	TypeOutputImageList:      ".txt",
	TypeOutputDetectionsFile: ".csv",
}

// OutputExtension returns the on-disk file extension for an output type
// tag, or "" for non-output tags.
func OutputExtension(tag string) string {
	return outputExtensions[tag]
}

// OptionType validates and normalises option values. Validate returns the
// normalised form of the value and whether the value was accepted.
type OptionType interface {
	Validate(value string) (string, bool)
	Describe() string
}

var (
	intTagRE   = regexp.MustCompile(`^int(?:\[(\d+),(\d+)?\])?$`)
	floatTagRE = regexp.MustCompile(`^float(?:\[([+-]?(?:[0-9]*[.])?[0-9]+),([+-]?(?:[0-9]*[.])?[0-9]+)?\])?$`)
)

// ParseType maps a type tag to its validator. Bounds are inclusive and the
// upper bound may be omitted (`int[5,]`). Tags that match no known grammar
// get the accept-anything text validator.
func ParseType(tag string) OptionType {
	if m := intTagRE.FindStringSubmatch(tag); m != nil {
		t := intType{}
		if m[1] != "" {
			v, _ := strconv.ParseInt(m[1], 10, 64)
			t.min = &v
		}
		if m[2] != "" {
			v, _ := strconv.ParseInt(m[2], 10, 64)
			t.max = &v
		}
		return t
	}
	if m := floatTagRE.FindStringSubmatch(tag); m != nil {
		t := floatType{}
		if m[1] != "" {
			v, _ := strconv.ParseFloat(m[1], 64)
			t.min = &v
		}
		if m[2] != "" {
			v, _ := strconv.ParseFloat(m[2], 64)
			t.max = &v
		}
		return t
	}
	if ext, ok := outputExtensions[tag]; ok {
		return outputType{ext: ext}
	}
	return stringType{}
}

type stringType struct{}

func (stringType) Validate(value string) (string, bool) { return value, true }

func (stringType) Describe() string { return "text" }

type intType struct {
	min, max *int64
}

// Validate accepts unsigned base-10 integers only. The normalised form is
// the canonical formatting, so "007" stores as "7".
func (t intType) Validate(value string) (string, bool) {
	if !isDigits(value) {
		return value, false
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return value, false
	}
	if t.min != nil && i < *t.min {
		return value, false
	}
	if t.max != nil && i > *t.max {
		return value, false
	}
	return strconv.FormatInt(i, 10), true
}

func (t intType) Describe() string {
	switch {
	case t.min != nil && t.max != nil:
		return fmt.Sprintf("integer between %d and %d", *t.min, *t.max)
	case t.max != nil:
		return fmt.Sprintf("integer less than %d", *t.max)
	case t.min != nil:
		return fmt.Sprintf("integer greater than %d", *t.min)
	}
	return "integer"
}

type floatType struct {
	min, max *float64
}

func (t floatType) Validate(value string) (string, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value, false
	}
	if t.min != nil && f < *t.min {
		return value, false
	}
	if t.max != nil && f > *t.max {
		return value, false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

func (t floatType) Describe() string {
	switch {
	case t.min != nil && t.max != nil:
		return fmt.Sprintf("decimal between %.1f and %.1f", *t.min, *t.max)
	case t.max != nil:
		return fmt.Sprintf("decimal less than %.1f", *t.max)
	case t.min != nil:
		return fmt.Sprintf("decimal greater than %.1f", *t.min)
	}
	return "decimal"
}

type outputType struct {
	ext string
}

// Validate requires the pattern to carry the type's extension and stores
// the pattern with the extension stripped.
func (t outputType) Validate(value string) (string, bool) {
	ext := filepath.Ext(value)
	if ext != t.ext {
		return value, false
	}
	return strings.TrimSuffix(value, ext), true
}

func (outputType) Describe() string { return "file pattern" }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
