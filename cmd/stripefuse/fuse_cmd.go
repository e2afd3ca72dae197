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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-stripe/cmd/stripefuse/fusion"
	"github.com/ajroetker/go-stripe/cmd/stripefuse/ir"
)

type fuseFlags struct {
	parentTags []string
	aTags      []string
	bTags      []string
	fusedTags  []string
	outDir     string
}

func newFuseCmd() *cobra.Command {
	flags := &fuseFlags{}

	cmd := &cobra.Command{
		Use:   "fuse FILE [FILE...]",
		Short: "Run the fusion pass over one or more textual block IR files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuse(cmd, args, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.parentTags, "parent-tag", nil, "tags the enclosing block must carry for a fusion attempt")
	cmd.Flags().StringSliceVar(&flags.aTags, "a-tag", nil, "tags the earlier candidate block must carry")
	cmd.Flags().StringSliceVar(&flags.bTags, "b-tag", nil, "tags the later candidate block must carry")
	cmd.Flags().StringSliceVar(&flags.fusedTags, "fused-tag", nil, "tags applied to a block once it has been fused")
	cmd.Flags().StringVarP(&flags.outDir, "output", "o", "", "directory to write fused files to (default: stdout)")

	return cmd
}

func runFuse(cmd *cobra.Command, paths []string, flags *fuseFlags) error {
	opts := fusion.Options{
		ParentReqs: ir.NewTags(flags.parentTags...),
		AReqs:      ir.NewTags(flags.aTags...),
		BReqs:      ir.NewTags(flags.bTags...),
		FusedSet:   ir.NewTags(flags.fusedTags...),
	}

	results, err := fuseFiles(paths, opts)
	if err != nil {
		return err
	}

	for _, res := range results {
		printed := ir.PrintBlock(res.Root)
		if flags.outDir == "" {
			fmt.Fprint(cmd.OutOrStdout(), printed)
			continue
		}
		dest := filepath.Join(flags.outDir, filepath.Base(res.Path))
		if err := os.WriteFile(dest, []byte(printed), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
	}
	return nil
}
