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

	"github.com/spf13/cobra"
	"github.com/wso2/identity-reconciler/internal/identity/service"
)

func newFingerprintCmd(opts *rootOptions) *cobra.Command {

	var source, email, name, username string
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the canonical identifier of a set of identity attributes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.initLogger(""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), service.Fingerprint(source, email, name, username))
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Name of the source")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&username, "username", "", "User name")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
