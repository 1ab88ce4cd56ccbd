/*
Copyright 2025 The AI Taxi Authors.

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

package opensearch

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		options  *Options
		expected int
	}{
		{options: NewOptions(), expected: 0},
		{options: &Options{Host: "search.example.com", Port: 9200, Scheme: "https"}, expected: 0},
		{options: &Options{Host: "", Port: 9200, Scheme: "http"}, expected: 1},
		{options: &Options{Host: "localhost", Port: 0, Scheme: "http"}, expected: 1},
		{options: &Options{Host: "localhost", Port: 9200, Scheme: "ftp"}, expected: 1},
		{options: &Options{Host: "", Port: -1, Scheme: ""}, expected: 3},
	}

	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			errs := test.options.Validate()
			if diff := cmp.Diff(len(errs), test.expected); diff != "" {
				t.Fatalf("error count differ (-got, +want): %s", diff)
			}
		})
	}
}

func TestOptionsAddress(t *testing.T) {
	options := &Options{Host: "localhost", Port: 9200, Scheme: "http"}
	if diff := cmp.Diff(options.Address(), "http://localhost:9200"); diff != "" {
		t.Fatalf("address differ (-got, +want): %s", diff)
	}
}
