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

// Package fusion implements the loop-fusion pass: pairwise plan
// computation, refactoring, block merging, an inner driver that walks a
// statement list trying to fuse neighboring blocks, and a recursive pass
// that applies a pluggable Strategy throughout a block tree.
package fusion

import (
	"fmt"
	"os"
)

// debugFusion enables verbose tracing of plan/fuse decisions.
var debugFusion = os.Getenv("STRIPEFUSE_DEBUG") != ""

func debugPrint(format string, args ...any) {
	if debugFusion {
		fmt.Printf("[fusion] "+format+"\n", args...)
	}
}
