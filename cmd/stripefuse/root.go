// Copyright 2025 go-highway Authors
//
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

package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stripefuse",
		Short:         "Apply the loop-fusion pass to textual block IR",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newFuseCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newStatsCmd())
	return root
}
