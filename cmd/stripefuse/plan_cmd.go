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

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-stripe/cmd/stripefuse/fusion"
	"github.com/ajroetker/go-stripe/cmd/stripefuse/ir"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan BUFFER FILE_A FILE_B",
		Short: "Report whether two blocks can be fused over a shared buffer, without fusing them",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args[0], args[1], args[2])
		},
	}
}

func runPlan(cmd *cobra.Command, bufName, pathA, pathB string) error {
	a, err := parseBlockFile(pathA)
	if err != nil {
		return err
	}
	b, err := parseBlockFile(pathB)
	if err != nil {
		return err
	}

	plan, ok := fusion.ComputePlan(a, b, bufName)
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(out, "no fusion plan: %s and %s do not unify over %q\n", a.Name, b.Name, bufName)
		return nil
	}

	fmt.Fprintf(out, "tile a: %v\n", plan.TileA)
	fmt.Fprintf(out, "tile b: %v\n", plan.TileB)
	fmt.Fprintf(out, "remap a: %v\n", plan.RemapA)
	fmt.Fprintf(out, "remap b: %v\n", plan.RemapB)
	return nil
}

func parseBlockFile(path string) (*ir.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	block, err := ir.ParseBlock(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return block, nil
}
