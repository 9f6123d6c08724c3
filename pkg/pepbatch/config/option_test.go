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
	"testing"

	"github.com/pep-tk/pepbatch/testutil"
)

func thresholdOption(t *testutil.T) *Option {
	opt, err := NewOption(ParametersGroupName, "trigger_threshold", OptionSpec{
		Default:     "0.1",
		Type:        "float[0.0,1.0]",
		EnvVariable: "TRIGGER_THRESHOLD",
		Description: "region trigger threshold",
	})
	t.RequireNoError(err)
	return opt
}

func TestOptionSetValue(t *testing.T) {
	testutil.Run(t, "valid value replaces, invalid leaves unchanged", func(t *testutil.T) {
		opt := thresholdOption(t)

		t.CheckDeepEqual("0.1", opt.Value())

		t.CheckTrue(opt.SetValue("0.31"))
		t.CheckDeepEqual("0.31", opt.Value())

		t.CheckFalse(opt.SetValue("5"))
		t.CheckDeepEqual("0.31", opt.Value())

		t.CheckFalse(opt.SetValue("fast"))
		t.CheckDeepEqual("0.31", opt.Value())
	})

	testutil.Run(t, "values are stored normalised", func(t *testutil.T) {
		opt := thresholdOption(t)

		t.CheckTrue(opt.SetValue("0.50"))
		t.CheckDeepEqual("0.5", opt.Value())
	})
}

func TestOptionReset(t *testing.T) {
	testutil.Run(t, "reset falls back to the default", func(t *testutil.T) {
		opt := thresholdOption(t)

		t.CheckTrue(opt.SetValue("0.9"))
		opt.Reset()

		t.CheckDeepEqual("0.1", opt.Value())
	})

	testutil.Run(t, "output option value is normalised even when unset", func(t *testutil.T) {
		opt, err := NewOption(OutputGroupName, "out_images", OptionSpec{
			Default:     "image_list_[DATASET]_[TIMESTAMP].txt",
			Type:        TypeOutputImageList,
			EnvVariable: "OUT_IMAGE_LIST",
		})
		t.RequireNoError(err)

		t.CheckDeepEqual("image_list_[DATASET]_[TIMESTAMP]", opt.Value())

		t.CheckTrue(opt.SetValue("image_list_other.txt"))
		t.CheckDeepEqual("image_list_other", opt.Value())

		opt.Reset()
		t.CheckDeepEqual("image_list_[DATASET]_[TIMESTAMP]", opt.Value())
	})
}

func TestOptionLock(t *testing.T) {
	testutil.Run(t, "locked option rejects writes and reset", func(t *testutil.T) {
		opt := thresholdOption(t)

		t.CheckTrue(opt.SetValue("0.31"))
		opt.Lock()

		t.CheckFalse(opt.SetValue("0.5"))
		opt.Reset()

		t.CheckDeepEqual("0.31", opt.Value())
		t.CheckTrue(opt.Locked())
	})
}

func TestOptionInvalidDefault(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		_, err := NewOption(ParametersGroupName, "alpha_count", OptionSpec{
			Default: "1.5",
			Type:    "int",
		})

		t.CheckErrorContains("config parameters_config:alpha_count has default defined as 1.5 which is invalid", err)
	})
}

func TestOptionRoundTrip(t *testing.T) {
	testutil.Run(t, "dict round trip keeps value and lock", func(t *testutil.T) {
		opt := thresholdOption(t)
		t.CheckTrue(opt.SetValue("0.31"))
		opt.Lock()

		restored, err := NewOptionFromDict(opt.ToDict())

		t.CheckNoError(err)
		t.CheckDeepEqual(opt.ToDict(), restored.ToDict())
		t.CheckTrue(restored.Locked())
		t.CheckDeepEqual("0.31", restored.Value())
	})

	testutil.Run(t, "restored value bypasses the lock", func(t *testutil.T) {
		d := OptionDict{
			Locked:      true,
			Value:       "dets_Kotz-2019-fl04-CENT_[TIMESTAMP]",
			Default:     "dets_[DATASET]_[TIMESTAMP].csv",
			EnvVariable: "OUT_DETECTIONS",
			Name:        "out_detections",
			Type:        TypeOutputDetectionsFile,
		}

		restored, err := NewOptionFromDict(d)

		t.CheckNoError(err)
		t.CheckDeepEqual("dets_Kotz-2019-fl04-CENT_[TIMESTAMP]", restored.Value())
		t.CheckFalse(restored.SetValue("other.csv"))
	})

	testutil.Run(t, "round trip does not strip the extension twice", func(t *testutil.T) {
		opt, err := NewOption(OutputGroupName, "out_images", OptionSpec{
			Default:     "image_list_[DATASET].txt",
			Type:        TypeOutputImageList,
			EnvVariable: "OUT_IMAGE_LIST",
		})
		t.RequireNoError(err)
		t.CheckTrue(opt.SetValue("image_list_task.txt"))

		restored, err := NewOptionFromDict(opt.ToDict())
		t.CheckNoError(err)
		t.CheckDeepEqual("image_list_task", restored.Value())

		// a second round trip must not shorten the value further
		restored, err = NewOptionFromDict(restored.ToDict())
		t.CheckNoError(err)
		t.CheckDeepEqual("image_list_task", restored.Value())
	})

	testutil.Run(t, "invalid default is rejected on load", func(t *testutil.T) {
		_, err := NewOptionFromDict(OptionDict{
			Name:    "out_images",
			Type:    TypeOutputImageList,
			Default: "missing_extension",
		})

		t.CheckErrorContains("which is invalid", err)
	})
}

func TestOptionEnv(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		opt := thresholdOption(t)

		k, v := opt.Env()

		t.CheckDeepEqual("TRIGGER_THRESHOLD", k)
		t.CheckDeepEqual("0.1", v)
	})
}

func TestOptionClone(t *testing.T) {
	testutil.Run(t, "clone is independent", func(t *testutil.T) {
		opt := thresholdOption(t)
		t.CheckTrue(opt.SetValue("0.31"))

		clone := opt.Clone()
		t.CheckTrue(clone.SetValue("0.9"))
		clone.Lock()

		t.CheckDeepEqual("0.31", opt.Value())
		t.CheckFalse(opt.Locked())
		t.CheckDeepEqual("0.9", clone.Value())
	})
}
