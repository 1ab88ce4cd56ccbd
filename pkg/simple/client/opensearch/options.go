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

	"github.com/spf13/pflag"
)

type Options struct {
	Host   string `json:"host" yaml:"host"`
	Port   int    `json:"port" yaml:"port"`
	Scheme string `json:"scheme" yaml:"scheme"`
}

func NewOptions() *Options {
	return &Options{
		Host:   "localhost",
		Port:   9200,
		Scheme: "http",
	}
}

func (s *Options) Validate() []error {
	errs := []error{}

	if s.Host == "" {
		errs = append(errs, fmt.Errorf("opensearch host must not be empty"))
	}
	if s.Port <= 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid opensearch port %d", s.Port))
	}
	if s.Scheme != "http" && s.Scheme != "https" {
		errs = append(errs, fmt.Errorf("opensearch scheme must be http or https, got %q", s.Scheme))
	}

	return errs
}

func (s *Options) AddFlags(fs *pflag.FlagSet, c *Options) {
	fs.StringVar(&s.Host, "opensearch-host", c.Host, ""+
		"OpenSearch service host.")

	fs.IntVar(&s.Port, "opensearch-port", c.Port, ""+
		"OpenSearch service port.")

	fs.StringVar(&s.Scheme, "opensearch-scheme", c.Scheme, ""+
		"OpenSearch service scheme, either http or https.")
}

// Address renders the options as a single endpoint URL.
func (s *Options) Address() string {
	return fmt.Sprintf("%s://%s:%d", s.Scheme, s.Host, s.Port)
}
