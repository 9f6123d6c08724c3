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

package cmd

import (
	"bytes"
	"testing"

	"github.com/pep-tk/pepbatch/cmd/pepbatch/app/flags"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/version"
	"github.com/pep-tk/pepbatch/testutil"
)

func TestDoVersion(t *testing.T) {
	testutil.Run(t, "default template", func(t *testutil.T) {
		var out bytes.Buffer

		err := doVersion(&out)

		t.CheckNoError(err)
		t.CheckDeepEqual(version.Get().Version+"\n", out.String())
	})

	testutil.Run(t, "custom template", func(t *testutil.T) {
		t.Override(&versionFlag, flags.NewTemplateFlag("{{.Platform}}", version.Info{}))
		var out bytes.Buffer

		err := doVersion(&out)

		t.CheckNoError(err)
		t.CheckDeepEqual(version.Get().Platform, out.String())
	})

	testutil.Run(t, "bad writer", func(t *testutil.T) {
		err := doVersion(testutil.BadWriter{})

		t.CheckErrorContains("executing template", err)
	})
}
