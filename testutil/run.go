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

package testutil

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// T wraps testing.T with setup helpers and richer assertions. Every test
// should go through Run so that overrides are torn down afterwards.
type T struct {
	*testing.T
	teardownActions []func()
}

// Run runs f as a subtest with a fresh T wrapper.
func Run(t *testing.T, name string, f func(t *T)) {
	if name == "" {
		name = t.Name()
	}
	t.Run(name, func(tInner *testing.T) {
		testWrapper := &T{T: tInner}
		defer testWrapper.teardown()
		f(testWrapper)
	})
}

// Override temporarily replaces the value pointed at by dest with tmp,
// restoring the original value when the test ends.
func (t *T) Override(dest, tmp interface{}) {
	teardown, err := override(dest, tmp)
	if err != nil {
		t.Errorf("temporary override value is invalid: %v", err)
		return
	}
	t.teardownActions = append(t.teardownActions, teardown)
}

func (t *T) NewTempDir() *TempDir {
	return NewTempDir(t.T)
}

func (t *T) CheckContains(expected, actual string) {
	t.Helper()
	if !strings.Contains(actual, expected) {
		t.Errorf("expected output %s not found in output: %s", expected, actual)
	}
}

func (t *T) CheckDeepEqual(expected, actual interface{}, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(actual, expected, opts...); diff != "" {
		t.Errorf("%T differ (-got, +want): %s", expected, diff)
	}
}

func (t *T) CheckErrorAndDeepEqual(shouldErr bool, err error, expected, actual interface{}, opts ...cmp.Option) {
	t.Helper()
	if err := checkErr(shouldErr, err); err != nil {
		t.Error(err)
		return
	}
	t.CheckDeepEqual(expected, actual, opts...)
}

func (t *T) CheckError(shouldErr bool, err error) {
	t.Helper()
	if err := checkErr(shouldErr, err); err != nil {
		t.Error(err)
	}
}

// CheckErrorContains checks that an error occurred and contains message.
func (t *T) CheckErrorContains(message string, err error) {
	t.Helper()
	if err == nil {
		t.Error("expected error, but returned none")
		return
	}
	if !strings.Contains(err.Error(), message) {
		t.Errorf("expected message [%s] not found in error: %s", message, err.Error())
	}
}

// CheckNoError fails the test if err is non nil.
func (t *T) CheckNoError(err error) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

// RequireNoError stops the test immediately if err is non nil.
func (t *T) RequireNoError(err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func (t *T) CheckTrue(condition bool) {
	t.Helper()
	if !condition {
		t.Error("expected true, but found false")
	}
}

func (t *T) CheckFalse(condition bool) {
	t.Helper()
	if condition {
		t.Error("expected false, but found true")
	}
}

func (t *T) teardown() {
	for i := len(t.teardownActions) - 1; i >= 0; i-- {
		t.teardownActions[i]()
	}
}

func override(dest, tmp interface{}) (func(), error) {
	dValue := reflect.ValueOf(dest)
	if dValue.Kind() != reflect.Ptr {
		return nil, errors.New("destination is not a pointer")
	}

	dElem := dValue.Elem()
	if !dElem.CanSet() {
		return nil, errors.New("destination cannot be set")
	}

	tValue := reflect.ValueOf(tmp)
	if !tValue.Type().AssignableTo(dElem.Type()) {
		return nil, fmt.Errorf("value of type %v is not assignable to type %v", tValue.Type(), dElem.Type())
	}

	saved := reflect.New(dElem.Type()).Elem()
	saved.Set(dElem)
	dElem.Set(tValue)

	return func() { dElem.Set(saved) }, nil
}
