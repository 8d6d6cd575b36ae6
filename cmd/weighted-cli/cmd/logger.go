// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/weightedvm/utils"
)

const (
	logMaxSize  = 8 // megabytes
	logMaxAge   = 7 // days
	logMaxFiles = 4
)

// newLogger writes [level] and above to a rotating JSON file in [dir] and
// to stderr unless [quiet].
func newLogger(dir string, name string, level logging.Level, quiet bool) (logging.Logger, error) {
	dir, err := utils.InitSubDirectory(dir, "")
	if err != nil {
		return nil, err
	}

	var consoleWriter io.WriteCloser = os.Stderr
	if quiet {
		consoleWriter = discardWriteCloser{io.Discard}
	}
	consoleCore := logging.NewWrappedCore(level, consoleWriter, logging.Colors.ConsoleEncoder())
	consoleCore.WriterDisabled = quiet

	rw := &lumberjack.Logger{
		Filename:   filepath.Join(dir, name+".log"),
		MaxSize:    logMaxSize,
		MaxAge:     logMaxAge,
		MaxBackups: logMaxFiles,
		Compress:   true,
	}
	fileCore := logging.NewWrappedCore(level, rw, logging.JSON.FileEncoder())
	return logging.NewLogger(logging.JSON.WrapPrefix(name), consoleCore, fileCore), nil
}

type discardWriteCloser struct {
	io.Writer
}

func (discardWriteCloser) Close() error {
	return nil
}
