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

package versions

// Client is a versioned OpenSearch API client. Implementations wrap one
// major version of the official client library and hand back raw response
// bodies; interpreting them is the caller's job. ExistsIndex folds the
// remote "not found" status into a plain false.
type Client interface {
	ExistsIndex(index string) (bool, error)
	CreateIndex(index string, body []byte) ([]byte, error)
	DeleteIndex(index string) ([]byte, error)
	GetIndices(pattern string) ([]byte, error)
	Version() (string, error)
	Close() error
}

// Error is the error envelope of the OpenSearch REST API.
type Error struct {
	Status int `json:"status"`
	Error  struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}
