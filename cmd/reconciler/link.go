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
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wso2/identity-reconciler/internal/identity/provider"
	syscontext "github.com/wso2/identity-reconciler/internal/system/context"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
	"github.com/wso2/identity-reconciler/internal/system/log"
)

func newLinkCmd(opts *rootOptions) *cobra.Command {

	var source string
	cmd := &cobra.Command{
		Use:   "link [snapshot]",
		Short: "Link the people of a source database to the unique identities of a snapshot",
		Long: `Read a registry snapshot from the given file or stdin, match its identities of
the source against the people of the source database and replace the mapping
table with the resulting relationships.`,
		Args: cobra.MaximumNArgs(1),
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

			var snapshot io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				file, err := os.Open(args[0])
				if err != nil {
					return errors2.NewClientError(errors2.INVALID_SNAPSHOT.WithDescription(err.Error()))
				}
				defer file.Close()
				snapshot = file
			}

			logger := log.GetLogger()

			identityProvider := provider.NewIdentityProvider(cfg, nil)
			defer func() {
				if err := identityProvider.Close(); err != nil {
					logger.Warn("Failed to close connections", log.Error(err))
				}
			}()

			linkService, err := identityProvider.GetLinkService(ctx)
			if err != nil {
				return err
			}
			report, err := linkService.Link(ctx, source, snapshot)
			if err != nil {
				return err
			}

			logger.Audit(log.AuditEvent{
				InitiatorID:   cfg.SourceDatabase.User,
				InitiatorType: log.InitiatorTypeUser,
				TargetID:      cfg.MappingStore.Table,
				TargetType:    log.TargetTypeMapping,
				ActionID:      log.ActionLinkIdentities,
				TraceID:       traceID,
				Data: map[string]interface{}{
					"source":      source,
					"written":     report.Written,
					"external":    report.ExternalTotal,
					"ambiguities": len(report.Ambiguities),
				},
			})
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d relationships created\n", report.Written, report.ExternalTotal)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Name of the source the identities belong to")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
