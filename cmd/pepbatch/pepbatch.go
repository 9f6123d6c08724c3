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

package main

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/pep-tk/pepbatch/cmd/pepbatch/app"
	"github.com/pep-tk/pepbatch/pkg/pepbatch/color"
)

func main() {
	if err := app.Run(os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, context.Canceled) {
			color.Fprintln(os.Stderr, color.Red, err)
		}
		os.Exit(1)
	}
}
