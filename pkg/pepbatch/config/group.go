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
	"sort"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/dataset"
)

// Group names as they appear in pipeline manifests and meta files.
const (
	ParametersGroupName = "parameters_config"
	OutputGroupName     = "output_config"
	PortsGroupName      = "dataset_pipeline_adapters"
)

// OptionEntry is one named option spec in manifest declared order.
type OptionEntry struct {
	Name string
	Spec OptionSpec
}

// Group is an ordered collection of options.
type Group struct {
	Name    string
	options []*Option
}

func newGroup(name string, allowed func(tag string) bool, entries []OptionEntry) (Group, error) {
	g := Group{Name: name}
	for _, e := range entries {
		if allowed != nil && !allowed(e.Spec.Type) {
			return Group{}, &InvalidConfigTypeError{Group: name, Name: e.Name, Type: e.Spec.Type}
		}
		opt, err := NewOption(name, e.Name, e.Spec)
		if err != nil {
			return Group{}, err
		}
		g.options = append(g.options, opt)
	}
	return g, nil
}

// Options returns the group's options in declared order.
func (g *Group) Options() []*Option {
	return g.options
}

// Option returns the named option.
func (g *Group) Option(name string) (*Option, bool) {
	for _, opt := range g.options {
		if opt.Name == name {
			return opt, true
		}
	}
	return nil, false
}

// SetOption sets the named option's value, reporting false when the option
// does not exist, is locked, or the value does not validate.
func (g *Group) SetOption(name, value string) bool {
	opt, ok := g.Option(name)
	if !ok {
		return false
	}
	return opt.SetValue(value)
}

// ResetOption resets the named option to its default.
func (g *Group) ResetOption(name string) {
	if opt, ok := g.Option(name); ok {
		opt.Reset()
	}
}

// ResetAll resets every option to its default.
func (g *Group) ResetAll() {
	for _, opt := range g.options {
		opt.Reset()
	}
}

// EnvPorts maps each option's environment variable to its current value.
func (g *Group) EnvPorts() map[string]string {
	env := make(map[string]string, len(g.options))
	for _, opt := range g.options {
		k, v := opt.Env()
		env[k] = v
	}
	return env
}

func (g *Group) Len() int {
	return len(g.options)
}

// ToDict snapshots the group keyed by option name.
func (g *Group) ToDict() map[string]OptionDict {
	d := make(map[string]OptionDict, len(g.options))
	for _, opt := range g.options {
		d[opt.Name] = opt.ToDict()
	}
	return d
}

// ParametersGroup holds pipeline parameters; any option type is accepted.
type ParametersGroup struct {
	Group
}

func NewParametersGroup(entries []OptionEntry) (*ParametersGroup, error) {
	g, err := newGroup(ParametersGroupName, nil, entries)
	if err != nil {
		return nil, err
	}
	return &ParametersGroup{Group: g}, nil
}

// NewParametersGroupFromDict rebuilds a persisted parameters group, options
// sorted by name.
func NewParametersGroupFromDict(d map[string]OptionDict) (*ParametersGroup, error) {
	g := &ParametersGroup{Group: Group{Name: ParametersGroupName}}
	if err := g.load(d, nil); err != nil {
		return nil, err
	}
	return g, nil
}

// OutputGroup holds the pipeline's output file patterns. Only output type
// tags are accepted.
type OutputGroup struct {
	Group
}

func isOutputTag(tag string) bool {
	_, ok := outputExtensions[tag]
	return ok
}

func NewOutputGroup(entries []OptionEntry) (*OutputGroup, error) {
	g, err := newGroup(OutputGroupName, isOutputTag, entries)
	if err != nil {
		return nil, err
	}
	return &OutputGroup{Group: g}, nil
}

// NewOutputGroupFromDict rebuilds a persisted output group, options sorted
// by name. The whitelist is enforced again on load.
func NewOutputGroupFromDict(d map[string]OptionDict) (*OutputGroup, error) {
	g := &OutputGroup{Group: Group{Name: OutputGroupName}}
	if err := g.load(d, isOutputTag); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Group) load(d map[string]OptionDict, allowed func(tag string) bool) error {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if allowed != nil && !allowed(d[name].Type) {
			return &InvalidConfigTypeError{Group: g.Name, Name: name, Type: d[name].Type}
		}
		opt, err := NewOptionFromDict(d[name])
		if err != nil {
			return err
		}
		g.options = append(g.options, opt)
	}
	return nil
}

// Clone returns an independent copy of the group and its options.
func (g *OutputGroup) Clone() *OutputGroup {
	clone := &OutputGroup{Group: Group{Name: g.Name}}
	for _, opt := range g.options {
		clone.options = append(clone.options, opt.Clone())
	}
	return clone
}

// ImageListOptions returns the image list outputs in declared order. The
// first one drives task progress polling.
func (g *OutputGroup) ImageListOptions() []*Option {
	return g.optionsOfType(TypeOutputImageList)
}

// DetectionsOptions returns the detection file outputs in declared order.
func (g *OutputGroup) DetectionsOptions() []*Option {
	return g.optionsOfType(TypeOutputDetectionsFile)
}

func (g *OutputGroup) optionsOfType(tag string) []*Option {
	var opts []*Option
	for _, opt := range g.options {
		if opt.Type == tag {
			opts = append(opts, opt)
		}
	}
	return opts
}

// EnvPorts maps env variables to output file patterns with the type's
// extension re-attached. Stored values are extension-stripped, so this is
// the only place the extension comes back.
func (g *OutputGroup) EnvPorts() map[string]string {
	return g.envPortsOf(g.options)
}

// ImageListEnvPorts is EnvPorts restricted to image list outputs.
func (g *OutputGroup) ImageListEnvPorts() map[string]string {
	return g.envPortsOf(g.ImageListOptions())
}

// DetectionsEnvPorts is EnvPorts restricted to detection file outputs.
func (g *OutputGroup) DetectionsEnvPorts() map[string]string {
	return g.envPortsOf(g.DetectionsOptions())
}

func (g *OutputGroup) envPortsOf(opts []*Option) map[string]string {
	env := make(map[string]string, len(opts))
	for _, opt := range opts {
		k, v := opt.Env()
		env[k] = v + OutputExtension(opt.Type)
	}
	return env
}

// PortAdapter connects one dataset attribute to the environment variable
// the pipeline reads it from.
type PortAdapter struct {
	Name             string
	DatasetAttribute string
	EnvVariable      string
}

// PortsGroup maps dataset attributes into the pipeline environment.
type PortsGroup struct {
	adapters []PortAdapter
}

func NewPortsGroup(adapters []PortAdapter) *PortsGroup {
	return &PortsGroup{adapters: adapters}
}

// Adapters returns the adapters in declared order.
func (g *PortsGroup) Adapters() []PortAdapter {
	return g.adapters
}

// EnvPorts resolves the adapters against a dataset. Attributes the dataset
// does not have are collected into a MissingPortsError unless missingOK,
// in which case they are dropped.
func (g *PortsGroup) EnvPorts(ds *dataset.Dataset, missingOK bool) (map[string]string, error) {
	env := map[string]string{}
	var missing []string
	for _, a := range g.adapters {
		value, ok := ds.Get(a.DatasetAttribute)
		if !ok {
			missing = append(missing, a.DatasetAttribute)
			continue
		}
		env[a.EnvVariable] = value
	}
	if !missingOK && len(missing) > 0 {
		return nil, &MissingPortsError{Ports: missing, Dataset: ds.Name}
	}
	return env, nil
}

// PortAdapterDict is the persisted form of one adapter.
type PortAdapterDict struct {
	DatasetAttribute string `json:"dataset_attribute"`
	EnvVariable      string `json:"env_variable"`
}

func (g *PortsGroup) ToDict() map[string]PortAdapterDict {
	d := make(map[string]PortAdapterDict, len(g.adapters))
	for _, a := range g.adapters {
		d[a.Name] = PortAdapterDict{DatasetAttribute: a.DatasetAttribute, EnvVariable: a.EnvVariable}
	}
	return d
}

// NewPortsGroupFromDict rebuilds a persisted ports group, adapters sorted
// by name.
func NewPortsGroupFromDict(d map[string]PortAdapterDict) *PortsGroup {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)

	g := &PortsGroup{}
	for _, name := range names {
		g.adapters = append(g.adapters, PortAdapter{
			Name:             name,
			DatasetAttribute: d[name].DatasetAttribute,
			EnvVariable:      d[name].EnvVariable,
		})
	}
	return g
}
