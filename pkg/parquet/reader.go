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

// Package parquet reads Apache Parquet files into generic records, one
// map per row keyed by column name. Schema resolution is metadata driven
// with a data-driven fallback for files whose footer annotations cannot be
// interpreted. Decoding is delegated to github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	parquetgo "github.com/parquet-go/parquet-go"
)

// Record is one decoded row. Values are nil for fields absent from the row,
// native Go primitives for primitive kinds, and display strings otherwise.
type Record map[string]interface{}

// FileConfig is the explicit reader configuration. A zero value is valid.
type FileConfig struct {
	// SkipMetadataSchema disables metadata-driven schema resolution; the
	// schema is inferred from the first decoded row instead.
	SkipMetadataSchema bool
	// SkipPageIndex skips decoding of the optional page index.
	SkipPageIndex bool
	// SkipBloomFilters skips decoding of the optional bloom filters.
	SkipBloomFilters bool
}

func (c *FileConfig) fileOptions() []parquetgo.FileOption {
	return []parquetgo.FileOption{
		parquetgo.SkipPageIndex(c.SkipPageIndex),
		parquetgo.SkipBloomFilters(c.SkipBloomFilters),
	}
}

// Extractor reads parquet files according to a FileConfig. Every call opens
// and closes its own file handle, so concurrent calls are independent.
type Extractor struct {
	conf FileConfig
}

func NewExtractor(conf *FileConfig) *Extractor {
	x := &Extractor{}
	if conf != nil {
		x.conf = *conf
	}
	return x
}

var defaultExtractor = NewExtractor(nil)

// ResolveSchema reads the schema of the file at path. See Extractor.ResolveSchema.
func ResolveSchema(path string) (*Schema, error) { return defaultExtractor.ResolveSchema(path) }

// ReadRecords reads up to maxRecords rows of the file at path. See Extractor.ReadRecords.
func ReadRecords(path string, maxRecords int) ([]Record, error) {
	return defaultExtractor.ReadRecords(path, maxRecords)
}

// CountRecords counts the rows of the file at path. See Extractor.CountRecords.
func CountRecords(path string) (int64, error) { return defaultExtractor.CountRecords(path) }

// PrintSchema renders the schema of the file at path to standard output.
func PrintSchema(path string) error { return defaultExtractor.FprintSchema(os.Stdout, path) }

const readBatchSize = 64

// open opens path and decodes the footer. A footer-decode failure is retried
// exactly once with a freshly constructed lenient configuration; if the
// retry also fails the error is classified as a MetadataError. The caller
// owns the returned closer.
func (x *Extractor) open(path string) (*parquetgo.File, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parquet: open file")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "parquet: stat file")
	}

	pf, err := parquetgo.OpenFile(f, info.Size(), x.conf.fileOptions()...)
	if err != nil {
		klog.V(4).Infof("footer decode of %s failed, retrying with lenient configuration: %v", path, err)
		lenient := FileConfig{SkipPageIndex: true, SkipBloomFilters: true}
		retry, retryErr := parquetgo.OpenFile(f, info.Size(), lenient.fileOptions()...)
		if retryErr != nil {
			f.Close()
			return nil, nil, &MetadataError{Path: path, Err: err}
		}
		return retry, f, nil
	}
	return pf, f, nil
}

// forEachRow streams every row of the file through fn. fn returning false
// stops the iteration early.
func forEachRow(pf *parquetgo.File, fn func(parquetgo.Row) bool) error {
	buf := make([]parquetgo.Row, readBatchSize)
	for _, group := range pf.RowGroups() {
		rows := group.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for i := 0; i < n; i++ {
				if !fn(buf[i]) {
					rows.Close()
					return nil
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return errors.Wrap(err, "parquet: read rows")
			}
		}
		if err := rows.Close(); err != nil {
			return errors.Wrap(err, "parquet: close row reader")
		}
	}
	return nil
}

// ResolveSchema returns the ordered field list of the file at path.
//
// The schema comes from the footer metadata unless SkipMetadataSchema is set
// or the metadata yields no usable fields, in which case it is derived from
// the runtime structure of the first decoded row. A file with zero rows in
// that fallback path fails with ErrNoRows. Any other failure is surfaced as
// a SchemaError wrapping the cause.
func (x *Extractor) ResolveSchema(path string) (*Schema, error) {
	pf, closer, err := x.open(path)
	if err != nil {
		return nil, &SchemaError{Path: path, Err: err}
	}
	defer closer.Close()

	leaves := collectLeaves(pf.Schema())
	name := pf.Schema().Name()

	if !x.conf.SkipMetadataSchema {
		s, err := schemaFromLeaves(name, leaves)
		if err == nil {
			return s, nil
		}
		klog.V(4).Infof("metadata schema of %s unusable, inferring from first row: %v", path, err)
	}

	var first parquetgo.Row
	found := false
	if err := forEachRow(pf, func(row parquetgo.Row) bool {
		first = row.Clone()
		found = true
		return false
	}); err != nil {
		return nil, &SchemaError{Path: path, Err: err}
	}
	if !found {
		return nil, errors.Wrapf(ErrNoRows, "inferring schema of %s", path)
	}
	s, err := schemaFromRow(name, leaves, first)
	if err != nil {
		return nil, &SchemaError{Path: path, Err: err}
	}
	return s, nil
}

// ReadRecords decodes rows of the file at path until the stream ends or
// maxRecords rows have been produced; maxRecords <= 0 reads everything.
// Every schema field appears in every record: fields absent from a row map
// to nil, primitive values decode natively, and anything else falls back to
// a display string.
func (x *Extractor) ReadRecords(path string, maxRecords int) ([]Record, error) {
	pf, closer, err := x.open(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	leaves := collectLeaves(pf.Schema())
	records := []Record{}
	if err := forEachRow(pf, func(row parquetgo.Row) bool {
		records = append(records, decodeRow(leaves, row))
		return maxRecords <= 0 || len(records) < maxRecords
	}); err != nil {
		return nil, err
	}
	return records, nil
}

// CountRecords returns the number of rows in the file at path. A num_rows
// hint in the file's key/value metadata is trusted when present and
// parsable; otherwise the count comes from fully decoding the file.
func (x *Extractor) CountRecords(path string) (int64, error) {
	pf, closer, err := x.open(path)
	if err != nil {
		return 0, err
	}
	defer closer.Close()

	if hint, ok := pf.Lookup("num_rows"); ok {
		if n, err := strconv.ParseInt(hint, 10, 64); err == nil {
			return n, nil
		}
		klog.V(4).Infof("num_rows hint %q of %s is not a number, counting rows", hint, path)
	}

	var count int64
	if err := forEachRow(pf, func(parquetgo.Row) bool {
		count++
		return true
	}); err != nil {
		return 0, err
	}
	return count, nil
}

// FprintSchema resolves the schema of the file at path and renders it to w.
func (x *Extractor) FprintSchema(w io.Writer, path string) error {
	s, err := x.ResolveSchema(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Parquet file schema:")
	fmt.Fprintln(w, "====================")
	for _, f := range s.Fields {
		fmt.Fprintln(w, f.String())
	}
	return nil
}

// decodeRow converts one row into a record. Columns carrying more than one
// value (repeated fields) are rendered as a display string.
func decodeRow(leaves []leaf, row parquetgo.Row) Record {
	record := make(Record, len(leaves))
	for _, l := range leaves {
		record[l.name] = nil
	}

	values := make(map[int][]parquetgo.Value, len(leaves))
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(leaves) {
			continue
		}
		values[col] = append(values[col], v)
	}

	for col, vs := range values {
		l := leaves[col]
		switch {
		case len(vs) == 1:
			record[l.name] = decodeValue(l, vs[0])
		case len(vs) > 1:
			parts := make([]string, 0, len(vs))
			for _, v := range vs {
				if !v.IsNull() {
					parts = append(parts, v.String())
				}
			}
			if len(parts) > 0 {
				record[l.name] = fmt.Sprintf("%v", parts)
			}
		}
	}
	return record
}

// decodeValue decodes one value according to the leaf's primitive kind. A
// runtime kind that disagrees with the schema falls back to the display
// string instead of failing the record.
func decodeValue(l leaf, v parquetgo.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	if kindOf(v.Kind()) != l.kind {
		return v.String()
	}
	switch v.Kind() {
	case parquetgo.Boolean:
		return v.Boolean()
	case parquetgo.Int32:
		return v.Int32()
	case parquetgo.Int64:
		return v.Int64()
	case parquetgo.Float:
		return v.Float()
	case parquetgo.Double:
		return v.Double()
	case parquetgo.ByteArray, parquetgo.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
