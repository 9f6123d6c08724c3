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
	"testing"

	"github.com/pep-tk/pepbatch/testutil"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		description string
		tag         string
		value       string
		expected    string
		valid       bool
	}{
		{
			description: "bare int accepts digits",
			tag:         "int",
			value:       "42",
			expected:    "42",
			valid:       true,
		},
		{
			description: "int normalises leading zeros",
			tag:         "int",
			value:       "007",
			expected:    "7",
			valid:       true,
		},
		{
			description: "int rejects sign",
			tag:         "int",
			value:       "-1",
			valid:       false,
		},
		{
			description: "int rejects decimals",
			tag:         "int",
			value:       "1.5",
			valid:       false,
		},
		{
			description: "int rejects empty",
			tag:         "int",
			value:       "",
			valid:       false,
		},
		{
			description: "int lower bound is inclusive",
			tag:         "int[5,10]",
			value:       "5",
			expected:    "5",
			valid:       true,
		},
		{
			description: "int upper bound is inclusive",
			tag:         "int[5,10]",
			value:       "10",
			expected:    "10",
			valid:       true,
		},
		{
			description: "int below lower bound",
			tag:         "int[5,10]",
			value:       "4",
			valid:       false,
		},
		{
			description: "int above upper bound",
			tag:         "int[5,10]",
			value:       "11",
			valid:       false,
		},
		{
			description: "int open upper bound",
			tag:         "int[5,]",
			value:       "10000",
			expected:    "10000",
			valid:       true,
		},
		{
			description: "float accepts decimals",
			tag:         "float",
			value:       "0.5",
			expected:    "0.5",
			valid:       true,
		},
		{
			description: "float normalises trailing zeros",
			tag:         "float",
			value:       "1.50",
			expected:    "1.5",
			valid:       true,
		},
		{
			description: "float accepts scientific notation",
			tag:         "float",
			value:       "1e3",
			expected:    "1000",
			valid:       true,
		},
		{
			description: "float within bounds",
			tag:         "float[0.0,1.0]",
			value:       "0.31",
			expected:    "0.31",
			valid:       true,
		},
		{
			description: "float below lower bound",
			tag:         "float[0.0,1.0]",
			value:       "-0.1",
			valid:       false,
		},
		{
			description: "float above upper bound",
			tag:         "float[0.0,1.0]",
			value:       "1.2",
			valid:       false,
		},
		{
			description: "float negative bounds",
			tag:         "float[-1.5,1.5]",
			value:       "-1.0",
			expected:    "-1",
			valid:       true,
		},
		{
			description: "float open upper bound",
			tag:         "float[0.5,]",
			value:       "999.25",
			expected:    "999.25",
			valid:       true,
		},
		{
			description: "float rejects text",
			tag:         "float",
			value:       "fast",
			valid:       false,
		},
		{
			description: "image list pattern drops txt extension",
			tag:         "output_image_list",
			value:       "image_list_[DATASET]_[TIMESTAMP].txt",
			expected:    "image_list_[DATASET]_[TIMESTAMP]",
			valid:       true,
		},
		{
			description: "image list requires txt",
			tag:         "output_image_list",
			value:       "image_list.csv",
			valid:       false,
		},
		{
			description: "detections pattern drops csv extension",
			tag:         "output_detections_file",
			value:       "dets_[DATASET]_[TIMESTAMP].csv",
			expected:    "dets_[DATASET]_[TIMESTAMP]",
			valid:       true,
		},
		{
			description: "detections require csv",
			tag:         "output_detections_file",
			value:       "dets.txt",
			valid:       false,
		},
		{
			description: "unknown tag accepts anything",
			tag:         "something_else",
			value:       "free text",
			expected:    "free text",
			valid:       true,
		},
		{
			description: "malformed int bounds fall back to text",
			tag:         "int[,10]",
			value:       "not a number",
			expected:    "not a number",
			valid:       true,
		},
	}

	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			normalised, ok := ParseType(test.tag).Validate(test.value)

			t.CheckDeepEqual(test.valid, ok)
			if test.valid {
				t.CheckDeepEqual(test.expected, normalised)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		tag      string
		expected string
	}{
		{tag: "int", expected: "integer"},
		{tag: "int[5,10]", expected: "integer between 5 and 10"},
		{tag: "int[5,]", expected: "integer greater than 5"},
		{tag: "float", expected: "decimal"},
		{tag: "float[0.0,1.0]", expected: "decimal between 0.0 and 1.0"},
		{tag: "float[0.5,]", expected: "decimal greater than 0.5"},
		{tag: "output_image_list", expected: "file pattern"},
		{tag: "output_detections_file", expected: "file pattern"},
		{tag: "anything", expected: "text"},
	}

	for _, test := range tests {
		testutil.Run(t, test.tag, func(t *testutil.T) {
			t.CheckDeepEqual(test.expected, ParseType(test.tag).Describe())
		})
	}
}

func TestOutputExtension(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		t.CheckDeepEqual(".txt", OutputExtension(TypeOutputImageList))
		t.CheckDeepEqual(".csv", OutputExtension(TypeOutputDetectionsFile))
		t.CheckDeepEqual("", OutputExtension("float"))
	})
}
