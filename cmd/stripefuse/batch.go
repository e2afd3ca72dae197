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
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-stripe/cmd/stripefuse/fusion"
	"github.com/ajroetker/go-stripe/cmd/stripefuse/ir"
)

// fuseResult is one input file's parse-fuse outcome.
type fuseResult struct {
	Path     string
	Root     *ir.Block
	Counting *fusion.CountingStrategy
}

// fuseFiles parses and fuses each of paths concurrently, one goroutine
// per file bounded by GOMAXPROCS. The fusion pass itself is single
// threaded over a block tree; the concurrency here is across
// independent files, not within one.
func fuseFiles(paths []string, opts fusion.Options) ([]*fuseResult, error) {
	results := make([]*fuseResult, len(paths))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			root, err := ir.ParseBlock(string(data))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			counting := fusion.Pass(root, opts)
			results[i] = &fuseResult{Path: path, Root: root, Counting: counting}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
