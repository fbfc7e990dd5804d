// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads vifrepd's runtime configuration: a small JSON file
// merged over compiled-in defaults, the same flat-file-over-defaults
// pattern used elsewhere for daemon config in this ecosystem.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"dario.cat/mergo"
)

const (
	// DefaultPollInterval is how often vifrepd drains the devlink and
	// uevent sockets.
	DefaultPollInterval = 1 // seconds

	// DefaultReconcileInterval is how often vifrepd forces a full
	// devlink dump on top of the incremental drain, guarding against a
	// missed or ENOBUFS-dropped notification.
	DefaultReconcileInterval = 10 // minutes

	// DefaultHealthCheckFile is touched by vifrepd's keepalive loop every
	// health check interval, for an external liveness probe to watch.
	DefaultHealthCheckFile = "/tmp/vifrepd-healthy"

	// DefaultHealthCheckInterval is how often the health file is
	// touched, independent of whether anything changed.
	DefaultHealthCheckInterval = 30 // seconds
)

var configFiles = []string{
	"/etc/vifrepd/vifrepd.conf",
	"/etc/kubernetes/vifrepd/vifrepd.conf",
}

// Config is vifrepd's merged runtime configuration.
type Config struct {
	PollInterval        int    `json:"pollInterval,omitempty"`
	ReconcileInterval   int    `json:"reconcileInterval,omitempty"`
	HealthCheckFile     string `json:"healthCheckFile,omitempty"`
	HealthCheckInterval int    `json:"healthCheckInterval,omitempty"`
	ConfigurationPath   string `json:"configurationPath,omitempty"`
}

// Load returns vifrepd's configuration: the compiled-in defaults, with any
// values found in a flat JSON config file merged on top. explicitPath, if
// non-empty, is tried before the well-known locations in configFiles.
func Load(explicitPath string) (*Config, error) {
	cfg := &Config{
		PollInterval:        DefaultPollInterval,
		ReconcileInterval:   DefaultReconcileInterval,
		HealthCheckFile:     DefaultHealthCheckFile,
		HealthCheckInterval: DefaultHealthCheckInterval,
	}

	flat, err := loadFlatConfig(explicitPath)
	if err != nil {
		return nil, err
	}
	if flat == nil {
		return cfg, nil
	}

	if err := mergo.Merge(cfg, flat, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("config: merge with %s: %w", flat.ConfigurationPath, err)
	}
	return cfg, nil
}

func loadFlatConfig(explicitPath string) (*Config, error) {
	paths := configFiles
	if explicitPath != "" {
		paths = append([]string{explicitPath}, paths...)
	}

	for _, path := range paths {
		exists, err := pathExists(path)
		if err != nil {
			return nil, fmt.Errorf("config: checking %s: %w", path, err)
		}
		if !exists {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}

		flat := &Config{}
		if err := json.Unmarshal(data, flat); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		flat.ConfigurationPath = path
		return flat, nil
	}

	return nil, nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
