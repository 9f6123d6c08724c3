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

package util

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// For testing
var (
	OSEnviron = os.Environ
)

// EnvSliceToMap converts a string slice in the form of `ENV=value` to a map.
func EnvSliceToMap(slice []string) map[string]string {
	m := make(map[string]string, len(slice))
	for _, e := range slice {
		if v := strings.SplitN(e, "=", 2); len(v) == 2 {
			m[v[0]] = v[1]
		}
	}
	return m
}

// EnvMapToSlice converts a map of (string,string) to a sorted string slice
// with the given separator between key and value.
func EnvMapToSlice(m map[string]string, separator string) []string {
	var sl []string
	for k, v := range m {
		sl = append(sl, fmt.Sprintf("%s%s%s", k, separator, v))
	}
	sort.Strings(sl)
	return sl
}

// OverlayEnv returns the current process environment with the given
// variables layered on top. Variables present in both keep the overlay's
// value.
func OverlayEnv(overlay map[string]string) []string {
	merged := EnvSliceToMap(OSEnviron())
	for k, v := range overlay {
		merged[k] = v
	}
	return EnvMapToSlice(merged, "=")
}
