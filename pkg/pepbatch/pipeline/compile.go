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

// Package pipeline compiles kwiver pipeline templates into runnable pipe
// files. The kwiver runner neither injects environment variables into
// pipe-configs nor resolves template-relative paths, so both are expanded
// into the literal text ahead of the run.
package pipeline

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pep-tk/pepbatch/pkg/pepbatch/config"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/util"
)

// Macro tokens recognised in output file patterns.
const (
	DatasetToken   = "[DATASET]"
	TimestampToken = "[TIMESTAMP]"
)

// TimestampFormat renders timestamps at one second granularity, so outputs
// produced within the same second share a name deterministically.
const TimestampFormat = "20060102-150405"

var (
	envRefRE           = regexp.MustCompile(`\$ENV{([^}]*)}`)
	relativePathLineRE = regexp.MustCompile(`^(\s*)relativepath\s+(\S+)(\s*=\s*)(.*?)\s*$`)
)

// Compile renders the pipe file text for a pipeline and environment:
// $ENV{NAME} references are substituted with env values, then relativepath
// attributes are resolved against the template's directory. References to
// names missing from env are left verbatim and logged.
func Compile(p *config.PipelineConfig, env map[string]string) (string, error) {
	raw, err := util.ReadFile(p.Path)
	if err != nil {
		return "", errors.Wrap(err, "reading pipeline template")
	}

	text := string(raw)
	for k, v := range env {
		text = strings.ReplaceAll(text, fmt.Sprintf("$ENV{%s}", k), v)
	}
	for _, name := range envRefs(text) {
		logrus.Warnf("pipeline %s has no value for $ENV{%s}", p.Name, name)
	}

	return resolveRelativePaths(text, p.Directory), nil
}

// envRefs lists the distinct $ENV{...} names still present, in order of
// first appearance.
func envRefs(text string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range envRefRE.FindAllStringSubmatch(text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}

// resolveRelativePaths rewrites every `relativepath KEY = VALUE` line to
// `KEY = <dir>/VALUE`, keeping the line's indentation and spacing.
func resolveRelativePaths(text, dir string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		m := relativePathLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		abs := filepath.Join(dir, filepath.FromSlash(m[4]))
		lines[i] = m[1] + m[2] + m[3] + abs
	}
	return strings.Join(lines, "\n")
}

// CompileOutputFilenames resolves output file patterns to absolute paths
// under base, replacing the timestamp token with t at second granularity.
// For fixed inputs and t the result is byte-for-byte deterministic.
func CompileOutputFilenames(patterns map[string]string, base string, t time.Time) map[string]string {
	stamp := t.Format(TimestampFormat)
	out := make(map[string]string, len(patterns))
	for k, v := range patterns {
		name := strings.ReplaceAll(v, TimestampToken, stamp)
		if !filepath.IsAbs(name) {
			name = filepath.Join(base, name)
		}
		out[k] = filepath.Clean(name)
	}
	return out
}

// ExpandDataset replaces the dataset token in an output pattern with the
// task's filename-friendly name.
func ExpandDataset(pattern, taskKey string) string {
	return strings.ReplaceAll(pattern, DatasetToken, taskKey)
}
