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

package fusion

import "errors"

// These describe contract violations in the inputs to the fusion
// primitives: cases the caller is expected to have ruled out already
// (e.g. by going through ComputePlan before calling Refactor, or through
// FuseBlocks' own remap/rename bookkeeping before reading it back). They
// surface as panics rather than returned errors because there is no
// sensible recovery at the call site: a caller hitting one of these has a
// bug upstream, not bad input data.
var (
	// errAccessRankMismatch means two refinements onto the same named
	// buffer disagree on the number of access dimensions.
	errAccessRankMismatch = errors.New("mismatched access rank for shared buffer")

	// errNegativeStride means Refactor was asked to widen an outer
	// refinement's interior shape across an axis with a negative
	// coefficient, which has no well-defined inclusive bound.
	errNegativeStride = errors.New("unable to handle negative strides")

	// errNoRemapEntry/errNoRenameEntry mean FuseBlocks tried to rewrite a
	// refinement or scalar name that was never classified during the
	// probe phase; every name reachable from b's statements must have
	// been visited while walking b's refinements.
	errNoRemapEntry  = errors.New("refinement has no remap entry")
	errNoRenameEntry = errors.New("scalar has no rename entry")
)
