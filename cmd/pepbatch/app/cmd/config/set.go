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
	"io"
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/settings"
)

// Set writes the value for the field whose yaml tag matches args[0]. List
// fields append, so repeated sets build up the saved dataset-manifests.
func Set(out io.Writer, args []string) error {
	if err := setConfigValue(args[0], args[1]); err != nil {
		return err
	}
	logSetConfigForUser(out, args[0], args[1])
	return nil
}

// Unset resets the field whose yaml tag matches args[0] to its zero value.
func Unset(out io.Writer, args []string) error {
	if err := setConfigValue(args[0], ""); err != nil {
		return err
	}
	logUnsetConfigForUser(out, args[0])
	return nil
}

func setConfigValue(name string, value string) error {
	path, cfg, err := readConfig()
	if err != nil {
		return err
	}

	fieldIdx, err := getFieldIndex(cfg, name)
	if err != nil {
		return err
	}

	field := reflect.Indirect(reflect.ValueOf(cfg)).FieldByIndex(fieldIdx)
	val, err := parseAsType(value, field)
	if err != nil {
		return fmt.Errorf("%s is not a valid value for field %s", value, name)
	}

	reflect.ValueOf(cfg).Elem().FieldByIndex(fieldIdx).Set(val)

	return settings.WriteFullConfig(path, cfg)
}

func getFieldIndex(cfg *settings.GlobalConfig, name string) ([]int, error) {
	t := reflect.TypeOf(*cfg)
	for i := 0; i < t.NumField(); i++ {
		fieldType := t.Field(i)
		for _, tag := range strings.Split(fieldType.Tag.Get("yaml"), ",") {
			if tag == name {
				return fieldType.Index, nil
			}
		}
	}
	return nil, fmt.Errorf("%s is not a valid config field", name)
}

func parseAsType(value string, field reflect.Value) (reflect.Value, error) {
	fieldType := field.Type()
	switch fieldType.String() {
	case "string":
		return reflect.ValueOf(value), nil
	case "[]string":
		if value == "" {
			return reflect.Zero(fieldType), nil
		}
		return reflect.Append(field, reflect.ValueOf(value)), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported type: %s", fieldType)
	}
}

func readConfig() (string, *settings.GlobalConfig, error) {
	path, err := settings.ResolveConfigFile(configFile)
	if err != nil {
		return "", nil, errors.Wrap(err, "resolving config file")
	}
	cfg, err := settings.ReadConfigFileNoCache(path)
	if err != nil {
		return "", nil, err
	}
	return path, cfg, nil
}

func logSetConfigForUser(out io.Writer, key string, value string) {
	fmt.Fprintf(out, "set value %s to %s\n", key, value)
}

func logUnsetConfigForUser(out io.Writer, key string) {
	fmt.Fprintf(out, "unset value %s\n", key)
}
