/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import (
	"os"
	"path"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// LoadConfig reads the deployment file relative to home, expanding environment
// variables before decoding it.
func LoadConfig(home, filePath string) (*Config, error) {
	file, err := os.ReadFile(path.Join(home, filePath))
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(file))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigOrEmpty behaves like LoadConfig but returns an empty configuration when
// the deployment file does not exist. Defaults are not applied by either loader so
// command line overrides can be merged first.
func LoadConfigOrEmpty(home, filePath string) (*Config, error) {
	cfg, err := LoadConfig(home, filePath)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	return cfg, err
}

// LoadEnvFiles loads the .env files matching pattern under home. Variables that are
// already set in the environment win.
func LoadEnvFiles(home, pattern string) ([]string, error) {
	envFiles, err := filepath.Glob(filepath.Join(home, pattern))
	if err != nil || len(envFiles) == 0 {
		return nil, err
	}
	return envFiles, godotenv.Load(envFiles...)
}
