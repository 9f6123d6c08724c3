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
	"testing"

	"github.com/pep-tk/pepbatch/testutil"
)

func TestKeyValueFlagSet(t *testing.T) {
	testutil.Run(t, "collects assignments, last write wins", func(t *testutil.T) {
		flag := NewKeyValueFlag()

		t.CheckNoError(flag.Set("detector:threshold=0.4"))
		t.CheckNoError(flag.Set("writer:file=out.csv"))
		t.CheckNoError(flag.Set("detector:threshold=0.6"))

		t.CheckDeepEqual([]string{"detector:threshold", "writer:file"}, flag.Keys())
		t.CheckDeepEqual(map[string]string{
			"detector:threshold": "0.6",
			"writer:file":        "out.csv",
		}, flag.Values())

		value, ok := flag.Get("writer:file")
		t.CheckTrue(ok)
		t.CheckDeepEqual("out.csv", value)
	})

	testutil.Run(t, "values may contain the separator", func(t *testutil.T) {
		flag := NewKeyValueFlag()

		t.CheckNoError(flag.Set("expr=a=b"))

		value, _ := flag.Get("expr")
		t.CheckDeepEqual("a=b", value)
	})

	testutil.Run(t, "rejects pairs without a key or separator", func(t *testutil.T) {
		flag := NewKeyValueFlag()

		t.CheckErrorContains("expected key=value", flag.Set("no-separator"))
		t.CheckErrorContains("expected key=value", flag.Set("=value"))
	})
}

func TestKeyValueFlagString(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		flag := NewKeyValueFlag()
		t.CheckNoError(flag.Set("a=1"))
		t.CheckNoError(flag.Set("b=2"))

		t.CheckDeepEqual("a=1,b=2", flag.String())
		t.CheckDeepEqual("*flags.KeyValueFlag", flag.Type())
	})
}
