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
	"github.com/pkg/errors"

	parquetgo "github.com/parquet-go/parquet-go"
)

// Kind is the primitive kind of a schema field. Anything that is not one of
// the listed primitives (nested groups, repeated fields, INT96 timestamps)
// is reported as Other and decodes to its display string.
type Kind int

const (
	Other Kind = iota
	Boolean
	Int32
	Int64
	Float
	Double
	String
)

func (k Kind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		return "other"
	}
}

// Field describes one column of a parquet file. Nested leaves are flattened
// into dotted names. Type holds the source type's display form.
type Field struct {
	Name     string
	Kind     Kind
	Optional bool
	Type     string
}

func (f Field) String() string {
	repetition := "required"
	if f.Optional {
		repetition = "optional"
	}
	return repetition + " " + f.Kind.String() + " " + f.Name
}

// Schema is the ordered field list of a parquet file.
type Schema struct {
	Name   string
	Fields []Field
}

var errNoFields = errors.New("parquet: file metadata describes no fields")

// leaf is the per-column decode plan derived from the file schema. The slice
// index of a leaf equals the value column index reported by the row reader.
type leaf struct {
	name     string
	kind     Kind
	optional bool
	typeName string
}

func collectLeaves(s *parquetgo.Schema) []leaf {
	var leaves []leaf
	var walk func(prefix string, f parquetgo.Field, optional bool)
	walk = func(prefix string, f parquetgo.Field, optional bool) {
		name := f.Name()
		if prefix != "" {
			name = prefix + "." + name
		}
		optional = optional || f.Optional()
		if !f.Leaf() {
			for _, child := range f.Fields() {
				walk(name, child, optional)
			}
			return
		}
		t := f.Type()
		kind := kindOf(t.Kind())
		if f.Repeated() {
			kind = Other
		}
		leaves = append(leaves, leaf{
			name:     name,
			kind:     kind,
			optional: optional,
			typeName: t.String(),
		})
	}
	for _, f := range s.Fields() {
		walk("", f, false)
	}
	return leaves
}

func kindOf(k parquetgo.Kind) Kind {
	switch k {
	case parquetgo.Boolean:
		return Boolean
	case parquetgo.Int32:
		return Int32
	case parquetgo.Int64:
		return Int64
	case parquetgo.Float:
		return Float
	case parquetgo.Double:
		return Double
	case parquetgo.ByteArray, parquetgo.FixedLenByteArray:
		return String
	default:
		return Other
	}
}

// schemaFromLeaves converts the decode plan into the public schema form.
func schemaFromLeaves(name string, leaves []leaf) (*Schema, error) {
	if len(leaves) == 0 {
		return nil, errNoFields
	}
	s := &Schema{Name: name, Fields: make([]Field, 0, len(leaves))}
	for _, l := range leaves {
		s.Fields = append(s.Fields, Field{
			Name:     l.name,
			Kind:     l.kind,
			Optional: l.optional,
			Type:     l.typeName,
		})
	}
	return s, nil
}

// schemaFromRow derives a schema from the runtime structure of a decoded
// row, ignoring whatever logical annotations the file metadata carries. The
// kind of a column missing from the row falls back to its physical kind.
func schemaFromRow(name string, leaves []leaf, row parquetgo.Row) (*Schema, error) {
	if len(leaves) == 0 {
		return nil, errNoFields
	}
	kinds := make([]Kind, len(leaves))
	for i, l := range leaves {
		kinds[i] = l.kind
	}
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(leaves) || v.IsNull() {
			continue
		}
		kinds[col] = kindOf(v.Kind())
	}
	s := &Schema{Name: name, Fields: make([]Field, 0, len(leaves))}
	for i, l := range leaves {
		s.Fields = append(s.Fields, Field{
			Name:     l.name,
			Kind:     kinds[i],
			Optional: l.optional,
			Type:     l.typeName,
		})
	}
	return s, nil
}
