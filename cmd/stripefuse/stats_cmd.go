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

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-stripe/cmd/stripefuse/fusion"
	"github.com/ajroetker/go-stripe/cmd/stripefuse/ir"
)

type statsFlags struct {
	parentTags []string
	aTags      []string
	bTags      []string
	fusedTags  []string
}

func newStatsCmd() *cobra.Command {
	flags := &statsFlags{}

	cmd := &cobra.Command{
		Use:   "stats FILE [FILE...]",
		Short: "Report before/after block and statement counts for the fusion pass",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.parentTags, "parent-tag", nil, "tags the enclosing block must carry for a fusion attempt")
	cmd.Flags().StringSliceVar(&flags.aTags, "a-tag", nil, "tags the earlier candidate block must carry")
	cmd.Flags().StringSliceVar(&flags.bTags, "b-tag", nil, "tags the later candidate block must carry")
	cmd.Flags().StringSliceVar(&flags.fusedTags, "fused-tag", nil, "tags applied to a block once it has been fused")

	return cmd
}

func runStats(cmd *cobra.Command, paths []string, flags *statsFlags) error {
	opts := fusion.Options{
		ParentReqs: ir.NewTags(flags.parentTags...),
		AReqs:      ir.NewTags(flags.aTags...),
		BReqs:      ir.NewTags(flags.bTags...),
		FusedSet:   ir.NewTags(flags.fusedTags...),
	}

	before := make(map[string]blockStats, len(paths))
	for _, path := range paths {
		block, err := parseBlockFile(path)
		if err != nil {
			return err
		}
		before[path] = countBlocks(block)
	}

	results, err := fuseFiles(paths, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		after := countBlocks(res.Root)
		pre := before[res.Path]
		fmt.Fprintf(out, "%s\n", res.Path)
		fmt.Fprintf(out, "  blocks:     %d -> %d\n", pre.blocks, after.blocks)
		fmt.Fprintf(out, "  statements: %d -> %d\n", pre.stmts, after.stmts)
		fmt.Fprintf(out, "  fusion attempts: %d, fused: %d, failed: %d\n",
			res.Counting.Attempts, res.Counting.Fused, res.Counting.Failed)
	}
	return nil
}

type blockStats struct {
	blocks int
	stmts  int
}

// countBlocks walks block and every block nested under it via BlockStmt,
// tallying the total number of blocks and statements. A nested block
// counts both as a block and as a statement of its parent.
func countBlocks(block *ir.Block) blockStats {
	stats := blockStats{blocks: 1}
	for _, stmt := range block.Stmts {
		stats.stmts++
		if nested, ok := stmt.(*ir.BlockStmt); ok {
			sub := countBlocks(nested.Block)
			stats.blocks += sub.blocks
			stats.stmts += sub.stmts
		}
	}
	return stats
}
