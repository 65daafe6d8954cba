// Copyright 2026 The snapper Authors
// This file is part of the snapper library.
//
// The snapper library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The snapper library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the snapper library. If not, see <http://www.gnu.org/licenses/>.

package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/snapper-build/snapper/config"
	"github.com/snapper-build/snapper/internal/testsolc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeReturnsStdout(t *testing.T) {
	bin := testsolc.Responder(t, testsolc.CounterOutput("Counter.sol"))
	in, err := BuildInput("Counter.sol", testConfig(), config.Profile{})
	require.NoError(t, err)

	out, err := Invoke(context.Background(), bin, in)
	require.NoError(t, err)
	assert.JSONEq(t, testsolc.CounterOutput("Counter.sol"), string(out))
}

func TestInvokePassesStandardJSONFlag(t *testing.T) {
	bin := testsolc.Script(t, `cat > /dev/null
if [ "$1" = "--standard-json" ] && [ $# -eq 1 ]; then echo '{"ok":true}'; else echo '{"ok":false}'; fi`)
	out, err := Invoke(context.Background(), bin, &Input{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(out))
}

// Requests far larger than a pipe buffer must not deadlock against a
// compiler that writes while it reads.
func TestInvokeLargeRequest(t *testing.T) {
	bin := testsolc.Echo(t)
	content := strings.Repeat("contract C { function f() public {} }\n", 1<<15)
	in := &Input{
		Language: Solidity,
		Sources:  map[string]Source{"Big.sol": {Content: &content}},
		Settings: Settings{OutputSelection: OutputSelection{"*": {"*": NewOutputKinds(OutputABI)}}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := Invoke(ctx, bin, in)
	require.NoError(t, err)

	var echoed Input
	require.NoError(t, json.Unmarshal(out, &echoed))
	require.NotNil(t, echoed.Sources["Big.sol"].Content)
	assert.Equal(t, content, *echoed.Sources["Big.sol"].Content)
}

func TestInvokeNonZeroExit(t *testing.T) {
	bin := testsolc.Script(t, `cat > /dev/null
echo '{"errors":[]}'
echo 'boom' >&2
exit 1`)
	out, err := Invoke(context.Background(), bin, &Input{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":[]}`, string(out))
}

// A compiler may answer without consuming the whole request. The response
// decides the outcome, not the broken pipe on the request side.
func TestInvokeCompilerIgnoresInput(t *testing.T) {
	content := strings.Repeat("x", 1<<20)
	in := &Input{Language: Solidity, Sources: map[string]Source{"Big.sol": {Content: &content}}}

	bin := testsolc.Script(t, `echo '{"errors":[]}'`)
	out, err := Invoke(context.Background(), bin, in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":[]}`, string(out))

	res, err := ParseOutput(out, "Big.sol")
	require.NoError(t, err)
	assert.Empty(t, res.Artifacts)

	// Without any answer the exchange itself failed.
	silent := testsolc.Script(t, "exit 0")
	_, err = Invoke(context.Background(), silent, in)
	assert.ErrorIs(t, err, ErrProcessIO)
}

func TestInvokeSpawnFailure(t *testing.T) {
	_, err := Invoke(context.Background(), filepath.Join(t.TempDir(), "no-such-solc"), &Input{})
	assert.ErrorIs(t, err, ErrProcessSpawn)
}

func TestInvokeNotExecutable(t *testing.T) {
	bin := testsolc.Script(t, "exit 0")
	require.NoError(t, os.Chmod(bin, 0644))
	_, err := Invoke(context.Background(), bin, &Input{})
	assert.ErrorIs(t, err, ErrProcessSpawn)
}

func TestInvokeCancel(t *testing.T) {
	bin := testsolc.Script(t, "cat > /dev/null\nexec sleep 60")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Invoke(ctx, bin, &Input{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "err = %v", err)
	assert.Less(t, time.Since(start), 30*time.Second)
}
