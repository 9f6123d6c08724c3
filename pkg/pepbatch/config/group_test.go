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

	"github.com/pep-tk/pepbatch/pkg/pepbatch/dataset"
	"github.com/pep-tk/pepbatch/testutil"
)

func testOutputGroup(t *testutil.T) *OutputGroup {
	g, err := NewOutputGroup([]OptionEntry{
		{Name: "out_thermal_images", Spec: OptionSpec{
			Default:     "image_list_thermal_[DATASET]_[TIMESTAMP].txt",
			Type:        TypeOutputImageList,
			EnvVariable: "OUT_THERMAL_IMAGE_LIST",
		}},
		{Name: "out_optical_images", Spec: OptionSpec{
			Default:     "image_list_optical_[DATASET]_[TIMESTAMP].txt",
			Type:        TypeOutputImageList,
			EnvVariable: "OUT_OPTICAL_IMAGE_LIST",
		}},
		{Name: "out_detections", Spec: OptionSpec{
			Default:     "dets_[DATASET]_[TIMESTAMP].csv",
			Type:        TypeOutputDetectionsFile,
			EnvVariable: "OUT_DETECTIONS",
		}},
	})
	t.RequireNoError(err)
	return g
}

func TestGroupAccessors(t *testing.T) {
	testutil.Run(t, "declared order and lookups", func(t *testutil.T) {
		g, err := NewParametersGroup([]OptionEntry{
			{Name: "zeta", Spec: OptionSpec{Default: "0.1", Type: "float[0.0,1.0]", EnvVariable: "ZETA"}},
			{Name: "alpha", Spec: OptionSpec{Default: "31", Type: "int[0,100]", EnvVariable: "ALPHA"}},
		})
		t.CheckNoError(err)

		var names []string
		for _, opt := range g.Options() {
			names = append(names, opt.Name)
		}
		t.CheckDeepEqual([]string{"zeta", "alpha"}, names)
		t.CheckDeepEqual(2, g.Len())

		opt, ok := g.Option("alpha")
		t.CheckTrue(ok)
		t.CheckDeepEqual("31", opt.Value())

		_, ok = g.Option("missing")
		t.CheckFalse(ok)

		t.CheckTrue(g.SetOption("alpha", "42"))
		t.CheckFalse(g.SetOption("alpha", "200"))
		t.CheckFalse(g.SetOption("missing", "1"))
		t.CheckDeepEqual("42", opt.Value())

		t.CheckDeepEqual(map[string]string{"ZETA": "0.1", "ALPHA": "42"}, g.EnvPorts())

		g.ResetAll()
		t.CheckDeepEqual("31", opt.Value())
	})

	testutil.Run(t, "invalid default surfaces the group name", func(t *testutil.T) {
		_, err := NewParametersGroup([]OptionEntry{
			{Name: "alpha", Spec: OptionSpec{Default: "many", Type: "int"}},
		})

		t.CheckErrorContains("config parameters_config:alpha has default defined as many which is invalid", err)
	})
}

func TestOutputGroupWhitelist(t *testing.T) {
	testutil.Run(t, "non-output types rejected", func(t *testutil.T) {
		_, err := NewOutputGroup([]OptionEntry{
			{Name: "threshold", Spec: OptionSpec{Default: "0.1", Type: "float"}},
		})

		t.CheckDeepEqual(&InvalidConfigTypeError{Group: OutputGroupName, Name: "threshold", Type: "float"}, err)
	})

	testutil.Run(t, "whitelist enforced on reload too", func(t *testutil.T) {
		_, err := NewOutputGroupFromDict(map[string]OptionDict{
			"threshold": {Name: "threshold", Type: "float", Default: "0.1", Value: "0.1"},
		})

		t.CheckErrorContains("config output_config:threshold type float invalid", err)
	})
}

func TestOutputGroupEnvPorts(t *testing.T) {
	testutil.Run(t, "extension re-attached exactly once", func(t *testutil.T) {
		g := testOutputGroup(t)

		t.CheckDeepEqual(map[string]string{
			"OUT_THERMAL_IMAGE_LIST": "image_list_thermal_[DATASET]_[TIMESTAMP].txt",
			"OUT_OPTICAL_IMAGE_LIST": "image_list_optical_[DATASET]_[TIMESTAMP].txt",
		}, g.ImageListEnvPorts())

		t.CheckDeepEqual(map[string]string{
			"OUT_DETECTIONS": "dets_[DATASET]_[TIMESTAMP].csv",
		}, g.DetectionsEnvPorts())

		t.CheckDeepEqual(3, len(g.EnvPorts()))

		t.CheckTrue(g.SetOption("out_detections", "dets_custom.csv"))
		t.CheckDeepEqual(map[string]string{
			"OUT_DETECTIONS": "dets_custom.csv",
		}, g.DetectionsEnvPorts())
	})

	testutil.Run(t, "image list options keep declared order", func(t *testutil.T) {
		g := testOutputGroup(t)

		opts := g.ImageListOptions()

		t.CheckDeepEqual(2, len(opts))
		t.CheckDeepEqual("out_thermal_images", opts[0].Name)
		t.CheckDeepEqual("out_optical_images", opts[1].Name)
	})
}

func TestOutputGroupRoundTrip(t *testing.T) {
	testutil.Run(t, "locked snapshot survives", func(t *testutil.T) {
		g := testOutputGroup(t)
		for _, opt := range g.Options() {
			t.CheckTrue(opt.SetValue("prefix_task_[TIMESTAMP]" + OutputExtension(opt.Type)))
			opt.Lock()
		}

		restored, err := NewOutputGroupFromDict(g.ToDict())

		t.CheckNoError(err)
		t.CheckDeepEqual(g.ToDict(), restored.ToDict())

		opt, ok := restored.Option("out_detections")
		t.CheckTrue(ok)
		t.CheckTrue(opt.Locked())
		t.CheckDeepEqual("prefix_task_[TIMESTAMP]", opt.Value())
	})

	testutil.Run(t, "reload orders options by name", func(t *testutil.T) {
		g := testOutputGroup(t)

		restored, err := NewOutputGroupFromDict(g.ToDict())
		t.CheckNoError(err)

		var names []string
		for _, opt := range restored.Options() {
			names = append(names, opt.Name)
		}
		t.CheckDeepEqual([]string{"out_detections", "out_optical_images", "out_thermal_images"}, names)
	})
}

func TestOutputGroupClone(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		g := testOutputGroup(t)

		clone := g.Clone()
		t.CheckTrue(clone.SetOption("out_detections", "changed.csv"))
		for _, opt := range clone.Options() {
			opt.Lock()
		}

		original, _ := g.Option("out_detections")
		t.CheckDeepEqual("dets_[DATASET]_[TIMESTAMP]", original.Value())
		t.CheckFalse(original.Locked())
	})
}

func TestPortsGroupEnvPorts(t *testing.T) {
	adapters := []PortAdapter{
		{Name: "thermal_image_list", DatasetAttribute: dataset.AttrThermalImageList, EnvVariable: "PIPE_ARG_THERMAL_INPUT"},
		{Name: "optical_image_list", DatasetAttribute: dataset.AttrColorImageList, EnvVariable: "PIPE_ARG_OPTICAL_INPUT"},
		{Name: "transform_file", DatasetAttribute: dataset.AttrTransformationFile, EnvVariable: "PIPE_ARG_TRANSFORMATION_FILE"},
	}

	testutil.Run(t, "all ports resolve", func(t *testutil.T) {
		tmpDir := t.NewTempDir().Touch("thermal.txt", "color.txt", "trans.h5")
		ds := &dataset.Dataset{
			Name:               "Kotz-2019-fl04-CENT",
			ThermalImageList:   tmpDir.Path("thermal.txt"),
			ColorImageList:     tmpDir.Path("color.txt"),
			TransformationFile: tmpDir.Path("trans.h5"),
		}

		env, err := NewPortsGroup(adapters).EnvPorts(ds, false)

		t.CheckNoError(err)
		t.CheckDeepEqual(map[string]string{
			"PIPE_ARG_THERMAL_INPUT":       tmpDir.Path("thermal.txt"),
			"PIPE_ARG_OPTICAL_INPUT":       tmpDir.Path("color.txt"),
			"PIPE_ARG_TRANSFORMATION_FILE": tmpDir.Path("trans.h5"),
		}, env)
	})

	testutil.Run(t, "missing ports collected in declared order", func(t *testutil.T) {
		tmpDir := t.NewTempDir().Touch("thermal.txt")
		ds := &dataset.Dataset{
			Name:             "ir-only",
			ThermalImageList: tmpDir.Path("thermal.txt"),
		}

		_, err := NewPortsGroup(adapters).EnvPorts(ds, false)

		t.CheckDeepEqual(&MissingPortsError{
			Ports:   []string{dataset.AttrColorImageList, dataset.AttrTransformationFile},
			Dataset: "ir-only",
		}, err)
		t.CheckErrorContains("this pipeline requires [color_image_list transformation_file], which was not defined in the dataset ir-only", err)
	})

	testutil.Run(t, "missing ports dropped when tolerated", func(t *testutil.T) {
		tmpDir := t.NewTempDir().Touch("thermal.txt")
		ds := &dataset.Dataset{
			Name:             "ir-only",
			ThermalImageList: tmpDir.Path("thermal.txt"),
		}

		env, err := NewPortsGroup(adapters).EnvPorts(ds, true)

		t.CheckNoError(err)
		t.CheckDeepEqual(map[string]string{
			"PIPE_ARG_THERMAL_INPUT": tmpDir.Path("thermal.txt"),
		}, env)
	})
}

func TestPortsGroupRoundTrip(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		g := NewPortsGroup([]PortAdapter{
			{Name: "thermal_image_list", DatasetAttribute: "thermal_image_list", EnvVariable: "PIPE_ARG_THERMAL_INPUT"},
			{Name: "optical_image_list", DatasetAttribute: "color_image_list", EnvVariable: "PIPE_ARG_OPTICAL_INPUT"},
		})

		restored := NewPortsGroupFromDict(g.ToDict())

		t.CheckDeepEqual(g.ToDict(), restored.ToDict())
		t.CheckDeepEqual([]PortAdapter{
			{Name: "optical_image_list", DatasetAttribute: "color_image_list", EnvVariable: "PIPE_ARG_OPTICAL_INPUT"},
			{Name: "thermal_image_list", DatasetAttribute: "thermal_image_list", EnvVariable: "PIPE_ARG_THERMAL_INPUT"},
		}, restored.Adapters())
	})
}
