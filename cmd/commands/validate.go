/*
Copyright 2022 The Numaproj Authors.

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

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/numaproj/dataflow/pkg/config"
)

func NewValidateCommand() *cobra.Command {
	var configPath string

	command := &cobra.Command{
		Use:   "validate",
		Short: "Validate a pipeline configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfig(configPath)
			if err != nil {
				for _, e := range multierr.Errors(err) {
					cmd.PrintErrln(e)
				}
				return fmt.Errorf("invalid configuration")
			}
			cmd.Printf("Configuration of pipeline %q is valid\n", conf.Name)
			return nil
		},
	}
	command.Flags().StringVar(&configPath, "config", "", "Path of the pipeline configuration file")
	return command
}
