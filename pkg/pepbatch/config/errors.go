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

import "fmt"

// InvalidConfigDefaultError reports an option whose default does not
// validate against its declared type.
type InvalidConfigDefaultError struct {
	Group   string
	Name    string
	Default string
}

func (e *InvalidConfigDefaultError) Error() string {
	return fmt.Sprintf("config %s:%s has default defined as %s which is invalid", e.Group, e.Name, e.Default)
}

// InvalidConfigTypeError reports an option whose type tag is not accepted
// by its group.
type InvalidConfigTypeError struct {
	Group string
	Name  string
	Type  string
}

func (e *InvalidConfigTypeError) Error() string {
	return fmt.Sprintf("config %s:%s type %s invalid", e.Group, e.Name, e.Type)
}

// MissingConfigGroupError reports a required group absent from a pipeline
// manifest entry.
type MissingConfigGroupError struct {
	Group string
}

func (e *MissingConfigGroupError) Error() string {
	return fmt.Sprintf("config group %s is required and is not defined", e.Group)
}

// MissingPortsError is returned when a pipeline requires dataset attributes
// the dataset does not have. Ports lists the missing attribute names in the
// pipeline's declared order.
type MissingPortsError struct {
	Ports   []string
	Dataset string
}

func (e *MissingPortsError) Error() string {
	return fmt.Sprintf("this pipeline requires %v, which was not defined in the dataset %s", e.Ports, e.Dataset)
}
