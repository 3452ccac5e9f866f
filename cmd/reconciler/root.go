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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wso2/identity-reconciler/internal/system/config"
	"github.com/wso2/identity-reconciler/internal/system/constants"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
	"github.com/wso2/identity-reconciler/internal/system/log"
)

// rootOptions holds the flags shared by every command. Database flags override
// the deployment file.
type rootOptions struct {
	home       string
	configFile string
	debug      bool
	user       string
	password   string
	database   string
	host       string
	port       string
	driver     string
}

func newRootCmd() *cobra.Command {

	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "reconciler",
		Short: "Reconcile people identities between a community database and an identity registry",
		Long: `reconciler groups the people of a source database into unique identities,
exports them as a registry snapshot and links the source records back to the
unique identities of a snapshot.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.home, "home", "", "Reconciler home directory (defaults to $"+constants.DefaultHomeEnv+" or the working directory)")
	flags.StringVar(&opts.configFile, "config", constants.DefaultConfigFile, "Deployment file, relative to the home directory")
	flags.BoolVar(&opts.debug, "debug", false, "Log debug records")
	flags.StringVarP(&opts.user, "user", "u", "", "Source database user")
	flags.StringVarP(&opts.password, "password", "p", "", "Source database password")
	flags.StringVarP(&opts.database, "database", "d", "", "Source database name, or file for sqlite")
	flags.StringVar(&opts.host, "host", "", "Source database host")
	flags.StringVar(&opts.port, "port", "", "Source database port")
	flags.StringVar(&opts.driver, "driver", "", "Source database driver: mysql, postgres or sqlite")

	rootCmd.AddCommand(newExportCmd(opts), newLinkCmd(opts), newFingerprintCmd(opts))
	return rootCmd
}

// load reads the environment files and the deployment file, applies the command
// line overrides and initializes logging.
func (o *rootOptions) load() (*config.Config, error) {

	home, err := o.resolveHome()
	if err != nil {
		return nil, err
	}
	if _, err := config.LoadEnvFiles(home, constants.DefaultEnvGlob); err != nil {
		return nil, errors2.NewClientError(errors2.INVALID_CONFIG.WithDescription(
			fmt.Sprintf("loading environment files: %v", err)))
	}

	cfg, err := config.LoadConfigOrEmpty(home, o.configFile)
	if err != nil {
		return nil, errors2.NewClientError(errors2.INVALID_CONFIG.WithDescription(
			fmt.Sprintf("loading %s: %v", o.configFile, err)))
	}
	o.applyOverrides(cfg)
	cfg.ApplyDefaults()

	if err := o.initLogger(cfg.Log.LogLevel); err != nil {
		return nil, err
	}
	log.GetLogger().Debug(fmt.Sprintf("Configuration loaded from %s", home),
		log.String("sourceDriver", cfg.SourceDatabase.Driver),
		log.String("mappingStore", cfg.MappingStore.Type))
	return cfg, nil
}

func (o *rootOptions) initLogger(level string) error {

	if o.debug {
		level = "DEBUG"
	}
	if err := log.Init(level); err != nil {
		return errors2.NewClientError(errors2.INVALID_CONFIG.WithDescription(err.Error()))
	}
	return nil
}

func (o *rootOptions) applyOverrides(cfg *config.Config) {

	db := &cfg.SourceDatabase
	for _, override := range []struct {
		value  string
		target *string
	}{
		{o.user, &db.User},
		{o.password, &db.Password},
		{o.database, &db.DbName},
		{o.host, &db.Host},
		{o.port, &db.Port},
		{o.driver, &db.Driver},
	} {
		if override.value != "" {
			*override.target = override.value
		}
	}
}

// resolveHome determines the home directory from the flag, the environment or the
// working directory, in that order.
func (o *rootOptions) resolveHome() (string, error) {

	if o.home != "" {
		return o.home, nil
	}
	if envHome := os.Getenv(constants.DefaultHomeEnv); envHome != "" {
		return envHome, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", errors2.NewClientError(errors2.INVALID_CONFIG.WithDescription(
			fmt.Sprintf("resolving home directory: %v", err)))
	}
	return dir, nil
}

// runContext bounds a whole run by the configured timeout.
func runContext(parent context.Context, cfg *config.Config) (context.Context, context.CancelFunc, error) {

	timeout, err := cfg.RunTimeout()
	if err != nil {
		return nil, nil, errors2.NewClientError(errors2.INVALID_CONFIG.WithDescription(err.Error()))
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, cancel, nil
}
