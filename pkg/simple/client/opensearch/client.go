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

// Package opensearch manages the index lifecycle of an OpenSearch cluster:
// existence check, create, delete and list. Transport is delegated to the
// official opensearch-go clients; the cluster itself stays the source of
// truth for which indices exist, nothing is cached locally.
package opensearch

import (
	"fmt"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/EdSwArchitect/ai-taxi/pkg/simple/client/opensearch/versions"
	v1 "github.com/EdSwArchitect/ai-taxi/pkg/simple/client/opensearch/versions/v1"
	v2 "github.com/EdSwArchitect/ai-taxi/pkg/simple/client/opensearch/versions/v2"
)

// ErrEmptyIndexName rejects create/delete calls whose index name is empty
// or whitespace-only.
var ErrEmptyIndexName = errors.New("index name must not be empty")

// QueryError reports a remote call that failed for a reason other than
// "not found". The original cause is preserved.
type QueryError struct {
	Op    string
	Index string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Index == "" {
		return fmt.Sprintf("opensearch: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("opensearch: %s of index %s failed: %v", e.Op, e.Index, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Client is an index administration facade. The versioned client underneath
// is constructed lazily on first use, after probing the server's major
// version through the Info API.
type Client struct {
	address string
	version string
	owned   bool

	c   versions.Client
	mux sync.Mutex
}

// NewClient builds a client from connection options. The transport is owned
// by the client and released by Close.
func NewClient(options *Options) *Client {
	return &Client{address: options.Address(), owned: true}
}

// NewClientFromVersioned wraps an externally supplied versioned client.
// Ownership of the transport stays with the caller; Close is a no-op.
func NewClientFromVersioned(c versions.Client) *Client {
	return &Client{c: c}
}

// loadClient returns the versioned client, constructing it on first use.
// The read and the construction stay under the mutex so that concurrent
// first calls and Close never observe a half-published client.
func (c *Client) loadClient() (versions.Client, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.c != nil {
		return c.c, nil
	}

	// Detect the server major version using the Info API. Info is
	// compatible across 1.x and 2.x, so probe with the v2 client.
	probe, err := v2.New(c.address)
	if err != nil {
		return nil, err
	}
	number, err := probe.Version()
	if err != nil {
		probe.Close()
		return nil, err
	}

	major := strings.SplitN(number, ".", 2)[0]
	if major == "1" {
		probe.Close()
		vc, err := v1.New(c.address)
		if err != nil {
			return nil, err
		}
		c.c = vc
		c.version = major
		return c.c, nil
	}

	c.c = probe
	c.version = major
	return c.c, nil
}

// Exists reports whether the named index exists. An empty or whitespace-only
// name is false without a remote call, and a remote "not found" is false
// rather than an error.
func (c *Client) Exists(index string) (bool, error) {
	if strings.TrimSpace(index) == "" {
		return false, nil
	}
	vc, err := c.loadClient()
	if err != nil {
		return false, &QueryError{Op: "exists", Index: index, Err: err}
	}

	exists, err := vc.ExistsIndex(index)
	if err != nil {
		return false, &QueryError{Op: "exists", Index: index, Err: err}
	}
	return exists, nil
}

// Create creates the named index and returns the server's acknowledgment
// flag. Creating an index that already exists is a no-op returning false.
// Non-empty settings and mappings are carried in the request body.
func (c *Client) Create(index string, settings, mappings map[string]interface{}) (bool, error) {
	if strings.TrimSpace(index) == "" {
		return false, ErrEmptyIndexName
	}

	exists, err := c.Exists(index)
	if err != nil {
		return false, err
	}
	if exists {
		klog.V(2).Infof("index %s already exists, skipping creation", index)
		return false, nil
	}

	vc, err := c.loadClient()
	if err != nil {
		return false, &QueryError{Op: "create", Index: index, Err: err}
	}
	body, err := createBody(settings, mappings)
	if err != nil {
		return false, &QueryError{Op: "create", Index: index, Err: err}
	}
	response, err := vc.CreateIndex(index, body)
	if err != nil {
		return false, &QueryError{Op: "create", Index: index, Err: err}
	}
	return acknowledged("create", index, response)
}

// Delete deletes the named index and returns the server's acknowledgment
// flag. Deleting an index that does not exist is a no-op returning false.
func (c *Client) Delete(index string) (bool, error) {
	if strings.TrimSpace(index) == "" {
		return false, ErrEmptyIndexName
	}

	exists, err := c.Exists(index)
	if err != nil {
		return false, err
	}
	if !exists {
		klog.V(2).Infof("index %s does not exist, nothing to delete", index)
		return false, nil
	}

	vc, err := c.loadClient()
	if err != nil {
		return false, &QueryError{Op: "delete", Index: index, Err: err}
	}
	response, err := vc.DeleteIndex(index)
	if err != nil {
		return false, &QueryError{Op: "delete", Index: index, Err: err}
	}
	return acknowledged("delete", index, response)
}

// ListIndices returns the names of all indices in the cluster, in whatever
// order the server reports them.
func (c *Client) ListIndices() ([]string, error) {
	vc, err := c.loadClient()
	if err != nil {
		return nil, &QueryError{Op: "list", Err: err}
	}

	body, err := vc.GetIndices("*")
	if err != nil {
		return nil, &QueryError{Op: "list", Err: err}
	}

	var indices map[string]jsoniter.RawMessage
	if err := jsoniter.Unmarshal(body, &indices); err != nil {
		return nil, &QueryError{Op: "list", Err: err}
	}
	names := make([]string, 0, len(indices))
	for name := range indices {
		names = append(names, name)
	}
	return names, nil
}

// Close releases the owned transport. Safe to call once; a no-op when the
// versioned client was supplied externally or never loaded.
func (c *Client) Close() error {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.c == nil || !c.owned {
		return nil
	}
	err := c.c.Close()
	c.c = nil
	return err
}

func createBody(settings, mappings map[string]interface{}) ([]byte, error) {
	if len(settings) == 0 && len(mappings) == 0 {
		return nil, nil
	}
	body := map[string]interface{}{}
	if len(settings) > 0 {
		body["settings"] = settings
	}
	if len(mappings) > 0 {
		body["mappings"] = mappings
	}
	return jsoniter.Marshal(body)
}

func acknowledged(op, index string, body []byte) (bool, error) {
	var response struct {
		Acknowledged bool `json:"acknowledged"`
	}
	if err := jsoniter.Unmarshal(body, &response); err != nil {
		return false, &QueryError{Op: op, Index: index, Err: err}
	}
	if !response.Acknowledged {
		klog.V(2).Infof("%s of index %s was not acknowledged", op, index)
	}
	return response.Acknowledged, nil
}
