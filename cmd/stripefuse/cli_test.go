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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-stripe/cmd/stripefuse/ir"
)

func TestFuseCommandMergesTaggedBlocks(t *testing.T) {
	input := extractTxtarFile(t, "testdata/eltwise.txtar", "input.tile", t.TempDir())

	out := runCmd(t, "fuse", "--a-tag", "eltwise", "--b-tag", "eltwise", "--fused-tag", "fused", input)

	root, err := ir.ParseBlock(out)
	require.NoError(t, err, "fuse output should parse back as a block:\n%s", out)
	require.Len(t, root.Stmts, 1, "producer and consumer should have merged")
	merged, ok := root.Stmts[0].(*ir.BlockStmt)
	require.True(t, ok)
	assert.Equal(t, "producer+consumer", merged.Block.Name)
	assert.True(t, merged.Block.HasTags(ir.NewTags("fused")))
}

func TestFuseCommandWithoutTagsLeavesInputAlone(t *testing.T) {
	input := extractTxtarFile(t, "testdata/eltwise.txtar", "input.tile", t.TempDir())

	// Required tags nothing in the input carries: the pass runs but fuses
	// nothing, and the output is the input modulo formatting.
	out := runCmd(t, "fuse", "--a-tag", "nosuch", input)

	root, err := ir.ParseBlock(out)
	require.NoError(t, err)
	assert.Len(t, root.Stmts, 2, "both child blocks should survive unfused")
}

func TestFuseCommandWritesOutputDir(t *testing.T) {
	dir := t.TempDir()
	input := extractTxtarFile(t, "testdata/eltwise.txtar", "input.tile", dir)
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	runCmd(t, "fuse", "--a-tag", "eltwise", "--b-tag", "eltwise", "-o", outDir, input)

	data, err := os.ReadFile(filepath.Join(outDir, "input.tile"))
	require.NoError(t, err)
	root, err := ir.ParseBlock(string(data))
	require.NoError(t, err)
	assert.Len(t, root.Stmts, 1)
}

func TestPlanCommandReportsPlan(t *testing.T) {
	out := runCmd(t, "plan", "buf", "testdata/plan_producer.tile", "testdata/plan_consumer.tile")

	assert.Contains(t, out, "tile a: [1]")
	assert.Contains(t, out, "tile b: [1]")
	assert.Contains(t, out, "remap b: map[j:i]")
}

func TestPlanCommandUnknownBuffer(t *testing.T) {
	out := runCmd(t, "plan", "nosuch", "testdata/plan_producer.tile", "testdata/plan_consumer.tile")

	assert.Contains(t, out, "no fusion plan")
}

func TestStatsCommandCountsFusions(t *testing.T) {
	input := extractTxtarFile(t, "testdata/eltwise.txtar", "input.tile", t.TempDir())

	out := runCmd(t, "stats", "--a-tag", "eltwise", "--b-tag", "eltwise", input)

	assert.Contains(t, out, "blocks:     3 -> 2")
	assert.Contains(t, out, "fusion attempts: 1, fused: 1, failed: 0")
}
