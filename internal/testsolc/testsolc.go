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

// Package testsolc provides stand-in compiler executables and canned
// compiler responses for tests.
package testsolc

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// CounterBytecode is the creation code object of the Counter fixture.
const CounterBytecode = "6080604052348015600e575f80fd5b5060e78061001b5f395ff3fe6080604052348015600e575f80fd5b50600436106030575f3560e01c806306661abd146034578063371303c014604e575b5f80fd5b603a6056565b60405160459190607a565b60405180910390f35b60546060565b005b5f5481565b60015f808282546071919060a0565b92505081905550565b5f6020820190508282525f91905056fea2646970667358221220"

// CounterABI is the interface of the Counter fixture.
const CounterABI = `[{"inputs":[],"name":"count","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"inc","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

// Script writes an executable shell script with the given body and returns
// its path. Tests using it are skipped on Windows.
func Script(t testing.TB, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler scripts need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "solc")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

// Responder returns a fake compiler that consumes its input and answers
// with response regardless of the request.
func Responder(t testing.TB, response string) string {
	t.Helper()
	resp := filepath.Join(t.TempDir(), "response.json")
	if err := os.WriteFile(resp, []byte(response), 0644); err != nil {
		t.Fatal(err)
	}
	return Script(t, fmt.Sprintf("cat > /dev/null\ncat '%s'", resp))
}

// Router returns a fake compiler answering requests for the source file
// named in responses with the given document, and with an empty response for
// any other file.
// Router 根据请求中的源文件名返回对应的响应，其余文件返回空响应。
func Router(t testing.TB, responses map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	var body strings.Builder
	body.WriteString("input=$(cat)\ncase \"$input\" in\n")
	i := 0
	for name, resp := range responses {
		file := filepath.Join(dir, fmt.Sprintf("response-%d.json", i))
		if err := os.WriteFile(file, []byte(resp), 0644); err != nil {
			t.Fatal(err)
		}
		fmt.Fprintf(&body, "  *'\"%s\":'*) cat '%s' ;;\n", name, file)
		i++
	}
	body.WriteString("  *) echo '{}' ;;\nesac")
	return Script(t, body.String())
}

// Echo returns a fake compiler that writes its request back to stdout.
func Echo(t testing.TB) string {
	return Script(t, "exec cat")
}

// CounterOutput is a successful response declaring the Counter contract in
// filename, plus one warning.
func CounterOutput(filename string) string {
	return fmt.Sprintf(`{
  "errors": [
    {
      "component": "general",
      "errorCode": "1878",
      "formattedMessage": "Warning: SPDX license identifier not provided in source file.",
      "message": "SPDX license identifier not provided in source file.",
      "severity": "warning",
      "sourceLocation": {"end": -1, "file": %[1]q, "start": -1},
      "type": "Warning"
    }
  ],
  "sources": {%[1]q: {"id": 0}},
  "contracts": {
    %[1]q: {
      "Counter": {
        "abi": %[2]s,
        "evm": {
          "bytecode": {
            "functionDebugData": {},
            "generatedSources": [],
            "linkReferences": {},
            "object": %[3]q,
            "opcodes": "PUSH1 0x80 PUSH1 0x40 MSTORE CALLVALUE DUP1 ISZERO PUSH1 0xE JUMPI PUSH0 DUP1 REVERT \n",
            "sourceMap": "57:107:0:-:0;;;;;;;;;;;;;;;;;;;\n"
          },
          "deployedBytecode": {
            "immutableReferences": {},
            "linkReferences": {},
            "object": "6080604052348015600e575f80fd5b50",
            "opcodes": "PUSH1 0x80 PUSH1 0x40 MSTORE",
            "sourceMap": "57:107:0:-:0;;;;;;;;;"
          },
          "gasEstimates": {
            "creation": {"codeDepositCost": "46200", "executionCost": "97", "totalCost": "46297"},
            "external": {"count()": "2407", "inc()": "infinite"}
          },
          "methodIdentifiers": {"count()": "06661abd", "inc()": "371303c0"}
        }
      }
    }
  }
}`, filename, CounterABI, CounterBytecode)
}

// ErrorOutput is a response carrying one error-severity diagnostic.
func ErrorOutput(filename string) string {
	return fmt.Sprintf(`{
  "errors": [
    {
      "component": "general",
      "errorCode": "2314",
      "formattedMessage": "ParserError: Expected ';' but got '}'",
      "message": "Expected ';' but got '}'",
      "severity": "error",
      "sourceLocation": {"end": 62, "file": %[1]q, "start": 61},
      "type": "ParserError"
    }
  ],
  "sources": {}
}`, filename)
}
