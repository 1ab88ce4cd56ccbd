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

package v1

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	opensearch "github.com/opensearch-project/opensearch-go"
	"github.com/opensearch-project/opensearch-go/opensearchapi"

	"github.com/EdSwArchitect/ai-taxi/pkg/simple/client/opensearch/versions"
)

// OpenSearch talks to a 1.x cluster.
type OpenSearch struct {
	client    *opensearch.Client
	transport *http.Transport
}

func New(address string) (*OpenSearch, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{address},
		Transport: transport,
	})
	if err != nil {
		return nil, err
	}
	return &OpenSearch{client: client, transport: transport}, nil
}

func (o *OpenSearch) ExistsIndex(index string) (bool, error) {
	response, err := opensearchapi.IndicesExistsRequest{
		Index: []string{index},
	}.Do(context.Background(), o.client)
	if err != nil {
		return false, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if response.IsError() {
		return false, parseError(response)
	}
	return true, nil
}

func (o *OpenSearch) CreateIndex(index string, body []byte) ([]byte, error) {
	request := opensearchapi.IndicesCreateRequest{Index: index}
	if len(body) > 0 {
		request.Body = bytes.NewReader(body)
	}
	response, err := request.Do(context.Background(), o.client)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.IsError() {
		return nil, parseError(response)
	}
	return io.ReadAll(response.Body)
}

func (o *OpenSearch) DeleteIndex(index string) ([]byte, error) {
	response, err := opensearchapi.IndicesDeleteRequest{
		Index: []string{index},
	}.Do(context.Background(), o.client)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.IsError() {
		return nil, parseError(response)
	}
	return io.ReadAll(response.Body)
}

func (o *OpenSearch) GetIndices(pattern string) ([]byte, error) {
	response, err := opensearchapi.IndicesGetRequest{
		Index: []string{pattern},
	}.Do(context.Background(), o.client)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.IsError() {
		return nil, parseError(response)
	}
	return io.ReadAll(response.Body)
}

func (o *OpenSearch) Version() (string, error) {
	response, err := opensearchapi.InfoRequest{}.Do(context.Background(), o.client)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.IsError() {
		return "", parseError(response)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}
	var info struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := jsoniter.Unmarshal(body, &info); err != nil {
		return "", err
	}
	return info.Version.Number, nil
}

func (o *OpenSearch) Close() error {
	o.transport.CloseIdleConnections()
	return nil
}

func parseError(response *opensearchapi.Response) error {
	var e versions.Error
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if err := jsoniter.Unmarshal(body, &e); err != nil {
		return errors.New(string(body))
	}
	return errors.Errorf("type: %s, reason: %s", e.Error.Type, e.Error.Reason)
}
