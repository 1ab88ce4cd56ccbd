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
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// fakeCluster emulates the subset of the OpenSearch REST API the client
// uses: the Info endpoint plus index head/put/delete/get.
type fakeCluster struct {
	mux     sync.Mutex
	version string
	indices map[string][]byte
}

func newFakeCluster(version string) *fakeCluster {
	return &fakeCluster{version: version, indices: map[string][]byte{}}
}

func (f *fakeCluster) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	f.mux.Lock()
	defer f.mux.Unlock()

	res.Header().Set("Content-Type", "application/json")
	name := strings.Trim(req.URL.Path, "/")

	switch {
	case name == "" && req.Method == http.MethodGet:
		fmt.Fprintf(res, `{"name":"fake","version":{"distribution":"opensearch","number":"%s"}}`, f.version)
	case req.Method == http.MethodHead:
		if _, ok := f.indices[name]; ok {
			res.WriteHeader(http.StatusOK)
		} else {
			res.WriteHeader(http.StatusNotFound)
		}
	case req.Method == http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		f.indices[name] = body
		fmt.Fprintf(res, `{"acknowledged":true,"shards_acknowledged":true,"index":%q}`, name)
	case req.Method == http.MethodDelete:
		if _, ok := f.indices[name]; !ok {
			f.notFound(res, name)
			return
		}
		delete(f.indices, name)
		fmt.Fprint(res, `{"acknowledged":true}`)
	case req.Method == http.MethodGet && strings.Contains(name, "*"):
		out := map[string]interface{}{}
		for index := range f.indices {
			out[index] = map[string]interface{}{}
		}
		body, _ := jsoniter.Marshal(out)
		res.Write(body)
	case req.Method == http.MethodGet:
		if _, ok := f.indices[name]; !ok {
			f.notFound(res, name)
			return
		}
		fmt.Fprintf(res, `{%q:{}}`, name)
	default:
		res.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeCluster) notFound(res http.ResponseWriter, name string) {
	res.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(res, `{"error":{"type":"index_not_found_exception","reason":"no such index [%s]"},"status":404}`, name)
}

func (f *fakeCluster) createBody(name string) []byte {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.indices[name]
}

func testOptions(t *testing.T, server *httptest.Server) *Options {
	t.Helper()
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return &Options{Host: u.Hostname(), Port: port, Scheme: u.Scheme}
}

func TestExistsEmptyNameMakesNoRemoteCall(t *testing.T) {
	// Unreachable endpoint: any remote call would fail loudly.
	client := NewClient(&Options{Host: "localhost", Port: 1, Scheme: "http"})
	defer client.Close()

	for _, name := range []string{"", "   ", "\t"} {
		exists, err := client.Exists(name)
		if err != nil {
			t.Fatalf("Exists(%q) returned error: %v", name, err)
		}
		if exists {
			t.Fatalf("Exists(%q) = true, want false", name)
		}
	}
}

func TestCreateAndDeleteRejectBlankNames(t *testing.T) {
	client := NewClient(&Options{Host: "localhost", Port: 1, Scheme: "http"})
	defer client.Close()

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := client.Create(name, nil, nil); !errors.Is(err, ErrEmptyIndexName) {
			t.Fatalf("Create(%q) error = %v, want ErrEmptyIndexName", name, err)
		}
		if _, err := client.Delete(name); !errors.Is(err, ErrEmptyIndexName) {
			t.Fatalf("Delete(%q) error = %v, want ErrEmptyIndexName", name, err)
		}
	}
}

func TestIndexLifecycle(t *testing.T) {
	for _, version := range []string{"1.3.2", "2.0.0"} {
		t.Run("server "+version, func(t *testing.T) {
			fake := newFakeCluster(version)
			server := httptest.NewServer(fake)
			defer server.Close()

			client := NewClient(testOptions(t, server))
			defer client.Close()

			steps := []struct {
				name string
				op   func() (bool, error)
				want bool
			}{
				{"exists before create", func() (bool, error) { return client.Exists("orders") }, false},
				{"create", func() (bool, error) { return client.Create("orders", nil, nil) }, true},
				{"exists after create", func() (bool, error) { return client.Exists("orders") }, true},
				{"create again", func() (bool, error) { return client.Create("orders", nil, nil) }, false},
				{"delete", func() (bool, error) { return client.Delete("orders") }, true},
				{"exists after delete", func() (bool, error) { return client.Exists("orders") }, false},
				{"delete again", func() (bool, error) { return client.Delete("orders") }, false},
			}
			for _, step := range steps {
				got, err := step.op()
				if err != nil {
					t.Fatalf("%s: %v", step.name, err)
				}
				if diff := cmp.Diff(got, step.want); diff != "" {
					t.Fatalf("%s differ (-got, +want): %s", step.name, diff)
				}
			}
		})
	}
}

func TestCreateCarriesSettingsAndMappings(t *testing.T) {
	fake := newFakeCluster("2.0.0")
	server := httptest.NewServer(fake)
	defer server.Close()

	client := NewClient(testOptions(t, server))
	defer client.Close()

	settings := map[string]interface{}{
		"number_of_shards":   float64(2),
		"number_of_replicas": float64(1),
	}
	mappings := map[string]interface{}{
		"properties": map[string]interface{}{
			"id":   map[string]interface{}{"type": "long"},
			"name": map[string]interface{}{"type": "keyword"},
		},
	}

	acknowledged, err := client.Create("trips", settings, mappings)
	if err != nil {
		t.Fatal(err)
	}
	if !acknowledged {
		t.Fatal("create was not acknowledged")
	}

	var got map[string]interface{}
	if err := jsoniter.Unmarshal(fake.createBody("trips"), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"settings": settings,
		"mappings": mappings,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("create body differ (-got, +want): %s", diff)
	}
}

func TestCreateWithoutSettingsSendsNoBody(t *testing.T) {
	fake := newFakeCluster("2.0.0")
	server := httptest.NewServer(fake)
	defer server.Close()

	client := NewClient(testOptions(t, server))
	defer client.Close()

	if _, err := client.Create("plain", nil, nil); err != nil {
		t.Fatal(err)
	}
	if body := fake.createBody("plain"); len(body) != 0 {
		t.Fatalf("expected empty create body, got %s", body)
	}
}

func TestListIndices(t *testing.T) {
	fake := newFakeCluster("2.0.0")
	server := httptest.NewServer(fake)
	defer server.Close()

	client := NewClient(testOptions(t, server))
	defer client.Close()

	for _, name := range []string{"orders", "trips", "zones"} {
		if _, err := client.Create(name, nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	names, err := client.ListIndices()
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(names)
	if diff := cmp.Diff(names, []string{"orders", "trips", "zones"}); diff != "" {
		t.Fatalf("indices differ (-got, +want): %s", diff)
	}
}

func TestExistsSurfacesQueryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/" {
			fmt.Fprint(res, `{"version":{"distribution":"opensearch","number":"2.0.0"}}`)
			return
		}
		res.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(res, `{"error":{"type":"exception","reason":"boom"},"status":500}`)
	}))
	defer server.Close()

	client := NewClient(testOptions(t, server))
	defer client.Close()

	_, err := client.Exists("orders")
	if err == nil {
		t.Fatal("expected error")
	}
	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error %v is not a QueryError", err)
	}
	if queryErr.Op != "exists" || queryErr.Index != "orders" {
		t.Fatalf("unexpected QueryError fields: %+v", queryErr)
	}
}

func TestConcurrentFirstUseLoadsOneClient(t *testing.T) {
	fake := newFakeCluster("2.0.0")
	server := httptest.NewServer(fake)
	defer server.Close()

	client := NewClient(testOptions(t, server))
	defer client.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Exists("orders"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	fake := newFakeCluster("2.0.0")
	server := httptest.NewServer(fake)
	defer server.Close()

	client := NewClient(testOptions(t, server))
	if _, err := client.Exists("orders"); err != nil {
		t.Fatal(err)
	}
	if err := client.Close(); err != nil {
		t.Fatal(err)
	}
	if err := client.Close(); err != nil {
		t.Fatal(err)
	}
}
