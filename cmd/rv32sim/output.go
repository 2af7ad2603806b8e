// Package main provides the rv32sim command line interface.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Ameykolhe/RV32ISimulator/emu"
	"github.com/Ameykolhe/RV32ISimulator/trace"
)

// coreTrace bundles the two per-cycle writers of one core.
type coreTrace struct {
	RF    *trace.RFWriter
	State *trace.StateWriter
}

// outputSet owns the per-cycle trace files of both cores.
type outputSet struct {
	files []*os.File
	bufs  []*bufio.Writer

	ss coreTrace
	fs coreTrace
}

func newOutputSet() *outputSet {
	return &outputSet{}
}

// Open creates the four trace files inside the IO directory.
func (o *outputSet) Open(dir string) error {
	ssRF, err := o.create(filepath.Join(dir, "SS_RFResult.txt"))
	if err != nil {
		return err
	}
	fsRF, err := o.create(filepath.Join(dir, "FS_RFResult.txt"))
	if err != nil {
		return err
	}
	ssState, err := o.create(filepath.Join(dir, "StateResult_SS.txt"))
	if err != nil {
		return err
	}
	fsState, err := o.create(filepath.Join(dir, "StateResult_FS.txt"))
	if err != nil {
		return err
	}

	o.ss = coreTrace{RF: trace.NewRFWriter(ssRF), State: trace.NewStateWriter(ssState)}
	o.fs = coreTrace{RF: trace.NewRFWriter(fsRF), State: trace.NewStateWriter(fsState)}
	return nil
}

// SSTrace returns the single-cycle core's trace writers.
func (o *outputSet) SSTrace() coreTrace {
	return o.ss
}

// FSTrace returns the pipelined core's trace writers.
func (o *outputSet) FSTrace() coreTrace {
	return o.fs
}

// Close flushes and closes every trace file, reporting the first error.
func (o *outputSet) Close() error {
	var firstErr error
	for _, b := range o.bufs {
		if err := b.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, f := range o.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	o.bufs = nil
	o.files = nil
	return firstErr
}

func (o *outputSet) create(path string) (*bufio.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	b := bufio.NewWriter(f)
	o.files = append(o.files, f)
	o.bufs = append(o.bufs, b)
	return b, nil
}

// dumpDataMem writes the final contents of a data memory.
func dumpDataMem(path string, mem *emu.DataMem) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	b := bufio.NewWriter(f)
	if err := trace.WriteDataMem(b, mem.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := b.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
