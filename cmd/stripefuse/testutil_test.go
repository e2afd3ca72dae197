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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// extractTxtarFile writes the named file from the txtar archive at path
// into dir and returns the resulting path, for tests that need a real
// file on disk to hand to the CLI.
func extractTxtarFile(t *testing.T, archivePath, name, dir string) string {
	t.Helper()
	ar, err := txtar.ParseFile(archivePath)
	require.NoError(t, err)
	for _, f := range ar.Files {
		if f.Name == name {
			dest := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(dest, f.Data, 0o644))
			return dest
		}
	}
	t.Fatalf("txtar.ParseFile(%q): no file named %q", archivePath, name)
	return ""
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}
