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
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/snapper-build/snapper/internal/testsolc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputSuccess(t *testing.T) {
	res, err := ParseOutput([]byte(testsolc.CounterOutput("Counter.sol")), "Counter.sol")
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)

	a := res.Artifacts[0]
	assert.Equal(t, "Counter", a.Name)
	assert.JSONEq(t, testsolc.CounterABI, string(a.ABI))
	assert.Equal(t, testsolc.CounterBytecode, hex.EncodeToString(a.Bytecode))
	assert.NotEmpty(t, a.DeployedBytecode)
	assert.Equal(t, "PUSH1 0x80 PUSH1 0x40 MSTORE CALLVALUE DUP1 ISZERO PUSH1 0xE JUMPI PUSH0 DUP1 REVERT", a.Opcodes)
	assert.Equal(t, "57:107:0:-:0;;;;;;;;;;;;;;;;;;;", a.SourceMap)
	assert.Equal(t, map[string]string{"count()": "06661abd", "inc()": "371303c0"}, a.MethodIdentifiers)

	require.NotNil(t, a.GasEstimates)
	require.NotNil(t, a.GasEstimates.Creation)
	assert.Equal(t, "46297", a.GasEstimates.Creation.TotalCost.String())
	assert.Equal(t, Gas(2407), a.GasEstimates.External["count()"])
	assert.Equal(t, InfiniteGas, a.GasEstimates.External["inc()"])
	assert.Nil(t, a.GasEstimates.Internal)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, SeverityWarning, res.Diagnostics[0].Severity)
	assert.Equal(t, ErrorTypeWarning, res.Diagnostics[0].Type)
}

func TestParseOutputCompileError(t *testing.T) {
	_, err := ParseOutput([]byte(testsolc.ErrorOutput("Broken.sol")), "Broken.sol")
	require.ErrorIs(t, err, ErrCompile)

	var cerr *CompileError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "Broken.sol", cerr.File)
	require.Len(t, cerr.Errors(), 1)

	d := cerr.Errors()[0]
	assert.Equal(t, ErrorTypeParser, d.Type)
	assert.Equal(t, "2314", d.ErrorCode)
	assert.Equal(t, &SourceLocation{File: "Broken.sol", Start: 61, End: 62}, d.SourceLocation)
	assert.Contains(t, err.Error(), "Broken.sol:61:62: ParserError (2314): Expected ';' but got '}'")
}

func TestParseOutputErrorWithContracts(t *testing.T) {
	// Artifacts next to an error diagnostic are never trusted.
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(testsolc.CounterOutput("Counter.sol")), &out))
	out["errors"] = []any{map[string]any{
		"component": "general", "severity": "error", "type": "TypeError", "message": "bad",
	}}
	raw, err := json.Marshal(out)
	require.NoError(t, err)

	res, err := ParseOutput(raw, "Counter.sol")
	assert.ErrorIs(t, err, ErrCompile)
	assert.Nil(t, res)
}

func TestParseOutputNoContracts(t *testing.T) {
	res, err := ParseOutput([]byte(testsolc.CounterOutput("Counter.sol")), "Other.sol")
	require.NoError(t, err)
	assert.Empty(t, res.Artifacts)

	res, err = ParseOutput([]byte(`{"sources": {"Lib.sol": {"id": 0}}}`), "Lib.sol")
	require.NoError(t, err)
	assert.Empty(t, res.Artifacts)
	assert.Empty(t, res.Diagnostics)
}

func TestParseOutputMalformed(t *testing.T) {
	for _, raw := range []string{
		``,
		`not json`,
		`{"errors": {}}`,
		`{"errors": [{"severity": "fatal", "message": "x"}]}`,
		`{"contracts": {"A.sol": {"A": {"evm": {"gasEstimates": {"external": {"f()": "lots"}}}}}}}`,
	} {
		_, err := ParseOutput([]byte(raw), "A.sol")
		assert.ErrorIs(t, err, ErrParse, "input %q", raw)
	}
}

func TestParseOutputMissingFields(t *testing.T) {
	for name, contract := range map[string]string{
		"no abi":      `{"evm": {"bytecode": {"object": "00", "opcodes": "", "sourceMap": ""}, "deployedBytecode": {"object": ""}}}`,
		"bad abi":     `{"abi": [{"type": "function", "name": "f", "inputs": [{"type": "bogus"}]}], "evm": {}}`,
		"no evm":      `{"abi": []}`,
		"no bytecode": `{"abi": [], "evm": {"deployedBytecode": {"object": ""}}}`,
		"no deployed": `{"abi": [], "evm": {"bytecode": {"object": "00", "opcodes": "", "sourceMap": ""}}}`,
		"no opcodes":  `{"abi": [], "evm": {"bytecode": {"object": "00", "sourceMap": ""}, "deployedBytecode": {"object": ""}}}`,
		"bad hex":     `{"abi": [], "evm": {"bytecode": {"object": "0g", "opcodes": "", "sourceMap": ""}, "deployedBytecode": {"object": ""}}}`,
	} {
		raw := `{"contracts": {"A.sol": {"A": ` + contract + `}}}`
		_, err := ParseOutput([]byte(raw), "A.sol")
		assert.ErrorIs(t, err, ErrParse, name)
	}
}

func TestParseOutputInterface(t *testing.T) {
	raw := `{"contracts": {"IERC.sol": {"IERC": {
		"abi": [],
		"evm": {
			"bytecode": {"object": "", "opcodes": "", "sourceMap": "", "linkReferences": {}},
			"deployedBytecode": {"object": ""},
			"gasEstimates": null,
			"methodIdentifiers": {}
		}
	}}}}`
	res, err := ParseOutput([]byte(raw), "IERC.sol")
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)
	assert.Empty(t, res.Artifacts[0].Bytecode)
	assert.Nil(t, res.Artifacts[0].GasEstimates)
}

func TestParseOutputUnlinkedLibrary(t *testing.T) {
	raw := `{"contracts": {"Vault.sol": {"Vault": {
		"abi": [],
		"evm": {
			"bytecode": {
				"object": "6080__$a1b2c3d4e5f60718293a4b5c6d7e8f9012$__6000",
				"opcodes": "", "sourceMap": "",
				"linkReferences": {"Math.sol": {"SafeMath": [{"start": 2, "length": 20}]}}
			},
			"deployedBytecode": {"object": ""}
		}
	}}}}`
	_, err := ParseOutput([]byte(raw), "Vault.sol")
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "Math.sol:SafeMath")
}

func TestParseOutputSortedArtifacts(t *testing.T) {
	contract := `{"abi": [], "evm": {"bytecode": {"object": "00", "opcodes": "STOP", "sourceMap": ""}, "deployedBytecode": {"object": "00"}}}`
	raw := `{"contracts": {"M.sol": {"Zeta": ` + contract + `, "Alpha": ` + contract + `, "Mid": ` + contract + `}}}`
	res, err := ParseOutput([]byte(raw), "M.sol")
	require.NoError(t, err)

	var names []string
	for _, a := range res.Artifacts {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, names)
}

func TestErrorTypeUnknown(t *testing.T) {
	var d Diagnostic
	require.NoError(t, json.Unmarshal([]byte(`{"type": "BrandNewError", "severity": "info", "message": "m"}`), &d))
	assert.Equal(t, ErrorTypeUnknown, d.Type)
	assert.Equal(t, SeverityInfo, d.Severity)
}

func TestSeverityZeroValue(t *testing.T) {
	var d Diagnostic
	assert.Equal(t, SeverityUnknown, d.Severity)
	_, err := d.Severity.MarshalText()
	assert.Error(t, err)

	// A diagnostic without severity makes the response unusable, it is not
	// promoted to a compile error.
	raw := `{"errors": [{"type": "Warning", "component": "general", "message": "no severity"}]}`
	_, err = ParseOutput([]byte(raw), "A.sol")
	assert.ErrorIs(t, err, ErrParse)
	assert.NotErrorIs(t, err, ErrCompile)

	raw = `{"errors": [{"type": "Warning", "component": "general", "severity": "warning", "message": "fine"}]}`
	res, err := ParseOutput([]byte(raw), "A.sol")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, res.Diagnostics[0].Severity)
}

func TestGasValueText(t *testing.T) {
	for _, s := range []string{"0", "21000", "infinite", "115792089237316195423570985008687907853269984665640564039457584007913129639935"} {
		var g GasValue
		require.NoError(t, g.UnmarshalText([]byte(s)))
		text, err := g.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, s, string(text))
	}
	var g GasValue
	require.NoError(t, json.Unmarshal([]byte(`1234`), &g))
	assert.Equal(t, Gas(1234), g)
	assert.Error(t, g.UnmarshalText([]byte("-1")))
}
