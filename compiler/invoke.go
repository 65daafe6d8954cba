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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"
)

// StandardJSONFlag switches solc into structured request mode.
// StandardJSONFlag 让 solc 以标准 JSON 模式读写。
const StandardJSONFlag = "--standard-json"

// Invoke runs the compiler at binaryPath on the request and returns its raw
// standard output. The request is streamed to stdin while stdout is drained
// on a separate goroutine, so neither side can block on a full pipe.
//
// A non-zero exit status is not treated as failure: diagnostics travel in the
// response document. Cancelling ctx kills the process.
// Invoke 将请求写入编译器的标准输入，并在另一个协程中读取标准输出，避免管道阻塞。
// 非零退出码本身不视为失败，诊断信息由响应文档携带。
func Invoke(ctx context.Context, binaryPath string, in *Input) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binaryPath, StandardJSONFlag)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessSpawn, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessSpawn, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProcessSpawn, binaryPath, err)
	}

	var (
		g        errgroup.Group
		output   []byte
		writeErr error // request cut short by the compiler closing stdin
	)
	g.Go(func() error {
		err := json.NewEncoder(stdin).Encode(in)
		// Closing signals end of input even when encoding failed half way.
		// 即使编码中途失败，也要关闭 stdin 以通知编译器输入结束。
		if cerr := stdin.Close(); err == nil && cerr != nil && !errors.Is(cerr, io.ErrClosedPipe) {
			err = cerr
		}
		if err != nil {
			if brokenPipe(err) {
				writeErr = err
				return nil
			}
			return fmt.Errorf("%w: writing request: %v", ErrProcessIO, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if output, err = io.ReadAll(stdout); err != nil {
			return fmt.Errorf("%w: reading response: %v", ErrProcessIO, err)
		}
		return nil
	})
	ioErr := g.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if ioErr == nil && writeErr != nil {
		// The compiler stopped reading. Whatever it answered is judged by
		// the parser; with no answer at all the exchange failed.
		// 编译器提前关闭了输入，结果由响应文档决定。
		if len(output) == 0 {
			ioErr = fmt.Errorf("%w: writing request: %v", ErrProcessIO, writeErr)
		} else {
			log.Debug("Compiler closed its input early", "binary", binaryPath, "err", writeErr)
		}
	}
	if ioErr != nil {
		if stderr.Len() > 0 {
			log.Debug("Compiler stderr", "binary", binaryPath, "stderr", strings.TrimSpace(stderr.String()))
		}
		return nil, ioErr
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("%w: %v", ErrProcessIO, waitErr)
		}
		log.Debug("Compiler exited with non-zero status", "binary", binaryPath, "code", exitErr.ExitCode(), "stderr", strings.TrimSpace(stderr.String()))
	} else if stderr.Len() > 0 {
		log.Trace("Compiler stderr", "binary", binaryPath, "stderr", strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// brokenPipe reports whether a write failed because the reading end of the
// pipe is gone.
// brokenPipe 判断写入失败是否因为管道读端已关闭。
func brokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed)
}
