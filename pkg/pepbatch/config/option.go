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

// OptionSpec carries the attributes of one option as declared in a
// pipeline manifest.
type OptionSpec struct {
	Default     string
	Type        string
	EnvVariable string
	Description string
}

// Option is a single named pipeline setting. Its default is kept as
// written in the manifest; current values are stored normalised by the
// type validator. A locked option rejects further writes, which is how
// expanded output filenames survive a resume unchanged.
type Option struct {
	Name        string
	Type        string
	EnvVariable string
	Description string
	Default     string

	validator         OptionType
	normalisedDefault string
	value             *string
	locked            bool
}

// NewOption builds an option and validates its default. group is only used
// in error messages.
func NewOption(group, name string, spec OptionSpec) (*Option, error) {
	validator := ParseType(spec.Type)
	normalised, ok := validator.Validate(spec.Default)
	if !ok {
		return nil, &InvalidConfigDefaultError{Group: group, Name: name, Default: spec.Default}
	}
	return &Option{
		Name:              name,
		Type:              spec.Type,
		EnvVariable:       spec.EnvVariable,
		Description:       spec.Description,
		Default:           spec.Default,
		validator:         validator,
		normalisedDefault: normalised,
	}, nil
}

// Value returns the current value if one is set, else the normalised
// default. The result is always in normalised form.
func (o *Option) Value() string {
	if o.value != nil {
		return *o.value
	}
	return o.normalisedDefault
}

// SetValue validates and stores a new value. It reports false when the
// option is locked or the value does not validate, leaving the current
// value unchanged.
func (o *Option) SetValue(value string) bool {
	if o.locked {
		return false
	}
	normalised, ok := o.validator.Validate(value)
	if !ok {
		return false
	}
	o.value = &normalised
	return true
}

// Reset clears the current value so Value falls back to the default.
// No-op when locked.
func (o *Option) Reset() {
	if !o.locked {
		o.value = nil
	}
}

// Lock freezes the option against SetValue and Reset.
func (o *Option) Lock() {
	o.locked = true
}

// Freeze stores value directly, bypassing validation, and locks the option.
// Job metadata uses this to pin macro expanded output names, which no longer
// carry the extension the validator looks for.
func (o *Option) Freeze(value string) {
	o.value = &value
	o.locked = true
}

func (o *Option) Locked() bool {
	return o.locked
}

// Describe returns the human description of the option's type grammar.
func (o *Option) Describe() string {
	return o.validator.Describe()
}

// Env returns the environment variable name and the current value.
func (o *Option) Env() (string, string) {
	return o.EnvVariable, o.Value()
}

// Clone returns an independent copy of the option.
func (o *Option) Clone() *Option {
	clone := *o
	if o.value != nil {
		v := *o.value
		clone.value = &v
	}
	return &clone
}

// OptionDict is the persisted form of an option. Fields are declared in
// sorted key order so encoded JSON comes out sorted.
type OptionDict struct {
	Locked      bool   `json:"_locked"`
	Value       string `json:"_value"`
	Default     string `json:"default"`
	Description string `json:"description"`
	EnvVariable string `json:"env_variable"`
	Name        string `json:"name"`
	Type        string `json:"type"`
}

// ToDict snapshots the option for persistence. The emitted value is the
// effective Value() and the default stays as written in the manifest.
func (o *Option) ToDict() OptionDict {
	return OptionDict{
		Locked:      o.locked,
		Value:       o.Value(),
		Default:     o.Default,
		Description: o.Description,
		EnvVariable: o.EnvVariable,
		Name:        o.Name,
		Type:        o.Type,
	}
}

// NewOptionFromDict rebuilds a persisted option. The stored value is
// restored directly, without validation and before the lock applies, so
// locked snapshots survive a round trip.
func NewOptionFromDict(d OptionDict) (*Option, error) {
	o, err := NewOption("", d.Name, OptionSpec{
		Default:     d.Default,
		Type:        d.Type,
		EnvVariable: d.EnvVariable,
		Description: d.Description,
	})
	if err != nil {
		return nil, err
	}
	v := d.Value
	o.value = &v
	o.locked = d.Locked
	return o, nil
}
