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

package parquet

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoRows reports a file that produced zero rows where at least one was
// needed, e.g. when the schema has to be inferred from data.
var ErrNoRows = errors.New("parquet: file contains no rows")

// MetadataError reports a footer that could not be decoded. It is assigned
// at the single boundary wrapping the decoding library, so callers can
// branch on the error kind with errors.As instead of matching message text.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("parquet: metadata of %s could not be decoded: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// SchemaError reports that schema resolution failed after the data-driven
// fallback was exhausted. The original cause is preserved.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("parquet: schema of %s could not be resolved: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
