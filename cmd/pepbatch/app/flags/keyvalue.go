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

package flags

import (
	"fmt"
	"strings"
)

// KeyValueFlag is a repeatable pflag.Value collecting key=value assignments,
// such as pipeline parameters or extra pipe arguments. The last assignment
// wins when a key repeats.
type KeyValueFlag struct {
	pairs  []string
	keys   []string
	values map[string]string
}

func NewKeyValueFlag() *KeyValueFlag {
	return &KeyValueFlag{
		values: map[string]string{},
	}
}

func (f *KeyValueFlag) String() string {
	return strings.Join(f.pairs, ",")
}

func (f *KeyValueFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 || parts[0] == "" {
		return fmt.Errorf("invalid key value pair %q: expected key=value", value)
	}
	if _, seen := f.values[parts[0]]; !seen {
		f.keys = append(f.keys, parts[0])
	}
	f.values[parts[0]] = parts[1]
	f.pairs = append(f.pairs, value)
	return nil
}

func (f *KeyValueFlag) Type() string {
	return fmt.Sprintf("%T", f)
}

// Keys lists the distinct keys in the order they were first set.
func (f *KeyValueFlag) Keys() []string {
	keys := make([]string, len(f.keys))
	copy(keys, f.keys)
	return keys
}

// Values returns a copy of the collected assignments.
func (f *KeyValueFlag) Values() map[string]string {
	values := make(map[string]string, len(f.values))
	for k, v := range f.values {
		values[k] = v
	}
	return values
}

// Get returns the value set for key.
func (f *KeyValueFlag) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}
