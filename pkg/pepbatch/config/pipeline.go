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
	"strconv"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

// ManifestRootKey is the required top-level key of a pipeline manifest.
const ManifestRootKey = "PipelineManifest"

// PipelineConfig is one runnable pipeline: the template path plus its
// parameter, output and dataset port groups.
type PipelineConfig struct {
	Name       string
	Path       string
	Directory  string
	Parameters *ParametersGroup
	Outputs    *OutputGroup
	Ports      *PortsGroup
}

// Manifest is a read-only collection of pipeline configurations in manifest
// declared order.
type Manifest struct {
	pipelines map[string]*PipelineConfig
	names     []string
}

// Names lists the pipeline names in declared order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Pipeline returns the named pipeline configuration.
func (m *Manifest) Pipeline(name string) (*PipelineConfig, bool) {
	p, ok := m.pipelines[name]
	return p, ok
}

type pipelineDoc struct {
	Path       string        `yaml:"path"`
	Parameters yaml.MapSlice `yaml:"parameters_config"`
	Outputs    yaml.MapSlice `yaml:"output_config"`
	Adapters   yaml.MapSlice `yaml:"dataset_pipeline_adapters"`
}

type optionAttrs struct {
	Default     interface{} `yaml:"default"`
	Type        string      `yaml:"type"`
	EnvVariable string      `yaml:"env_variable"`
	Description string      `yaml:"description"`
}

type adapterAttrs struct {
	DatasetAttribute string `yaml:"dataset_attribute"`
	EnvVariable      string `yaml:"env_variable"`
}

// LoadManifest reads a pipeline manifest. Relative template paths resolve
// against the manifest file's directory; every template must exist on disk.
// The manifest is parsed twice: once into an ordered key list and once into
// typed entries, because only typed destinations keep YAML mapping order.
func LoadManifest(path string) (*Manifest, error) {
	contents, err := util.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading pipeline manifest")
	}

	var ordered struct {
		Pipelines yaml.MapSlice `yaml:"PipelineManifest"`
	}
	if err := yaml.Unmarshal(contents, &ordered); err != nil {
		return nil, errors.Wrap(err, "parsing pipeline manifest")
	}
	if len(ordered.Pipelines) == 0 {
		return nil, errors.Errorf("pipeline manifest %s has no %s entries", path, ManifestRootKey)
	}

	// Strict here so a typo like `parameters_confg` fails loudly instead of
	// silently dropping a group. Option attributes stay permissive: they are
	// decoded from MapSlice values in a later pass.
	var typed struct {
		Pipelines map[string]pipelineDoc `yaml:"PipelineManifest"`
	}
	if err := yaml.UnmarshalStrict(contents, &typed); err != nil {
		return nil, errors.Wrap(err, "parsing pipeline manifest")
	}

	manifestDir := filepath.Dir(path)
	m := &Manifest{pipelines: map[string]*PipelineConfig{}}
	for _, item := range ordered.Pipelines {
		name := keyString(item.Key)
		p, err := newPipelineConfig(name, manifestDir, typed.Pipelines[name])
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline %q", name)
		}
		m.pipelines[name] = p
		m.names = append(m.names, name)
	}
	return m, nil
}

func newPipelineConfig(name, manifestDir string, doc pipelineDoc) (*PipelineConfig, error) {
	if doc.Path == "" {
		return nil, errors.New("path is required")
	}
	path := doc.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(manifestDir, path)
	}
	path = filepath.Clean(path)
	if !util.IsFile(path) {
		return nil, errors.Errorf("pipeline %s does not exist", path)
	}

	paramEntries, err := optionEntries(doc.Parameters)
	if err != nil {
		return nil, err
	}
	parameters, err := NewParametersGroup(paramEntries)
	if err != nil {
		return nil, err
	}

	outputEntries, err := optionEntries(doc.Outputs)
	if err != nil {
		return nil, err
	}
	outputs, err := NewOutputGroup(outputEntries)
	if err != nil {
		return nil, err
	}

	if len(doc.Adapters) == 0 {
		return nil, &MissingConfigGroupError{Group: PortsGroupName}
	}
	var adapters []PortAdapter
	for _, item := range doc.Adapters {
		var attrs adapterAttrs
		if err := decodeItem(item.Value, &attrs); err != nil {
			return nil, errors.Wrapf(err, "adapter %q", keyString(item.Key))
		}
		adapters = append(adapters, PortAdapter{
			Name:             keyString(item.Key),
			DatasetAttribute: attrs.DatasetAttribute,
			EnvVariable:      attrs.EnvVariable,
		})
	}

	return &PipelineConfig{
		Name:       name,
		Path:       path,
		Directory:  filepath.Dir(path),
		Parameters: parameters,
		Outputs:    outputs,
		Ports:      NewPortsGroup(adapters),
	}, nil
}

func optionEntries(group yaml.MapSlice) ([]OptionEntry, error) {
	var entries []OptionEntry
	for _, item := range group {
		var attrs optionAttrs
		if err := decodeItem(item.Value, &attrs); err != nil {
			return nil, errors.Wrapf(err, "option %q", keyString(item.Key))
		}
		entries = append(entries, OptionEntry{
			Name: keyString(item.Key),
			Spec: OptionSpec{
				Default:     stringifyScalar(attrs.Default),
				Type:        attrs.Type,
				EnvVariable: attrs.EnvVariable,
				Description: attrs.Description,
			},
		})
	}
	return entries, nil
}

func decodeItem(value interface{}, into interface{}) error {
	raw, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, into)
}

func keyString(key interface{}) string {
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", key)
}

// stringifyScalar renders a YAML scalar the way option values are carried
// internally: as strings.
func stringifyScalar(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PipelineDict is the persisted form of a pipeline configuration. Fields
// are declared in sorted key order so encoded JSON comes out sorted.
type PipelineDict struct {
	Adapters   map[string]PortAdapterDict `json:"dataset_pipeline_adapters"`
	Name       string                     `json:"name"`
	Outputs    map[string]OptionDict      `json:"output_config"`
	Parameters map[string]OptionDict      `json:"parameters_config"`
	Path       string                     `json:"path"`
}

// ToDict snapshots the pipeline configuration for persistence.
func (p *PipelineConfig) ToDict() PipelineDict {
	return PipelineDict{
		Adapters:   p.Ports.ToDict(),
		Name:       p.Name,
		Outputs:    p.Outputs.ToDict(),
		Parameters: p.Parameters.ToDict(),
		Path:       p.Path,
	}
}
