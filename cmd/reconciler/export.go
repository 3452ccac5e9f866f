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
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/wso2/identity-reconciler/internal/identity/provider"
	syscontext "github.com/wso2/identity-reconciler/internal/system/context"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
	"github.com/wso2/identity-reconciler/internal/system/log"
)

func newExportCmd(opts *rootOptions) *cobra.Command {

	var source, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the people of a source database as a registry snapshot",
		Long: `Read every person of the source database, group them into unique identities
and write the registry snapshot as JSON to the output file or stdout. No file is
written when the export fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx, cancel, err := runContext(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cancel()
			traceID := syscontext.GetOrGenerateTraceID(ctx)
			ctx = syscontext.WithTraceID(ctx, traceID)

			logger := log.GetLogger()

			identityProvider := provider.NewIdentityProvider(cfg, time.Now)
			defer func() {
				if err := identityProvider.Close(); err != nil {
					logger.Warn("Failed to close connections", log.Error(err))
				}
			}()

			exportService, err := identityProvider.GetExportService(ctx)
			if err != nil {
				return err
			}

			var snapshot bytes.Buffer
			count, err := exportService.Export(ctx, source, &snapshot)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = snapshot.WriteTo(cmd.OutOrStdout())
			} else {
				err = os.WriteFile(output, snapshot.Bytes(), 0o644)
			}
			if err != nil {
				return errors2.NewServerError(errors2.WRITE_SNAPSHOT.WithTraceID(traceID), err)
			}

			logger.Audit(log.AuditEvent{
				InitiatorID:   cfg.SourceDatabase.User,
				InitiatorType: log.InitiatorTypeUser,
				TargetID:      source,
				TargetType:    log.TargetTypeRegistry,
				ActionID:      log.ActionExportIdentities,
				TraceID:       traceID,
				Data:          map[string]interface{}{"uidentities": count, "output": output},
			})
			logger.Info(fmt.Sprintf("%d unique identities exported from source %s", count, source))
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Name of the source the identities belong to")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Snapshot file (defaults to stdout)")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
