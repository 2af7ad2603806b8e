// Package main provides the rv32sim command line interface.
//
// rv32sim executes a program image on two independent RV32I models, a
// single-cycle core and a 5-stage pipelined core, in lockstep. Each
// core writes a per-cycle register-file trace and a per-cycle state
// trace; at termination the final data memory of each core is dumped.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/Ameykolhe/RV32ISimulator/emu"
	"github.com/Ameykolhe/RV32ISimulator/loader"
	"github.com/Ameykolhe/RV32ISimulator/timing/pipeline"
)

var (
	ioDir     = flag.String("iodir", "", "Directory containing the input files")
	maxCycles = flag.Uint64("max-cycles", 100000, "Abort if a core exceeds this many cycles")
	verbose   = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	dir, err := filepath.Abs(*ioDir)
	if err != nil {
		log.Fatalf("Error resolving IO directory: %v", err)
	}
	log.Infof("IO Directory: %s", dir)

	result, err := run(dir, *maxCycles)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if *verbose {
		log.Infof("Single-cycle core: %d cycles, %d instructions, CPI %.4f",
			result.SS.Cycles, result.SS.Instructions, result.SS.CPI)
		log.Infof("Pipelined core: %d cycles, %d instructions, CPI %.4f, %d stalls, %d branches, %d flushes",
			result.FS.Cycles, result.FS.Instructions, result.FS.CPI,
			result.FS.Stalls, result.FS.Branches, result.FS.Flushes)
	}
}

// Result carries the performance statistics of both cores after a run.
type Result struct {
	SS emu.Stats
	FS pipeline.Stats
}

// run simulates the program in the IO directory on both cores and
// writes all output files next to the inputs.
func run(dir string, maxCycles uint64) (*Result, error) {
	imemImage, err := loader.ReadImage(filepath.Join(dir, loader.ImemFile))
	if err != nil {
		return nil, err
	}
	dmemImage, err := loader.ReadImage(filepath.Join(dir, loader.DmemFile))
	if err != nil {
		return nil, err
	}

	imem := emu.NewInstructionMem(imemImage)
	ssCore := emu.NewSingleCycleCore(imem, emu.NewDataMem(dmemImage))
	fsCore := pipeline.NewPipeline(imem, emu.NewDataMem(dmemImage))

	if err := simulate(dir, ssCore, fsCore, maxCycles); err != nil {
		return nil, err
	}

	if err := dumpDataMem(filepath.Join(dir, "SS_DMEMResult.txt"), ssCore.DataMem()); err != nil {
		return nil, err
	}
	if err := dumpDataMem(filepath.Join(dir, "FS_DMEMResult.txt"), fsCore.DataMem()); err != nil {
		return nil, err
	}

	result := &Result{SS: ssCore.Stats(), FS: fsCore.Stats()}
	if err := writeMetrics(filepath.Join(dir, "PerformanceMetrics.txt"), result); err != nil {
		return nil, err
	}
	return result, nil
}

// simulate steps both cores in lockstep until each has halted, tracing
// the register file and the architectural state after every cycle.
func simulate(dir string, ssCore *emu.SingleCycleCore, fsCore *pipeline.Pipeline, maxCycles uint64) (err error) {
	files := newOutputSet()
	defer func() {
		if closeErr := files.Close(); err == nil {
			err = closeErr
		}
	}()
	if err := files.Open(dir); err != nil {
		return err
	}

	ssTrace := files.SSTrace()
	fsTrace := files.FSTrace()

	var ssCycle, fsCycle uint64
	for !ssCore.Halted() || !fsCore.Halted() {
		if !ssCore.Halted() {
			if err := ssCore.Step(); err != nil {
				return err
			}
			if err := ssTrace.RF.WriteCycle(ssCycle, ssCore.RegFile().Snapshot()); err != nil {
				return err
			}
			if err := ssTrace.State.WriteSingleCycle(ssCycle, ssCore.PC(), ssCore.NOP()); err != nil {
				return err
			}
			ssCycle++
		}

		if !fsCore.Halted() {
			if err := fsCore.Tick(); err != nil {
				return err
			}
			if err := fsTrace.RF.WriteCycle(fsCycle, fsCore.RegFile().Snapshot()); err != nil {
				return err
			}
			if err := fsTrace.State.WriteFiveStage(fsCycle, fsCore.State()); err != nil {
				return err
			}
			fsCycle++
		}

		if ssCycle > maxCycles || fsCycle > maxCycles {
			return fmt.Errorf("cycle limit of %d exceeded, aborting", maxCycles)
		}
	}
	return nil
}

// writeMetrics writes the performance counters of both cores.
func writeMetrics(path string, result *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	_, err = fmt.Fprintf(f,
		"Single Stage Core Performance Metrics\n"+
			"Number of cycles taken: %d\n"+
			"Total Number of Instructions: %d\n"+
			"Cycles per instruction: %g\n"+
			"Instructions per cycle: %g\n"+
			"\n"+
			"Five Stage Core Performance Metrics\n"+
			"Number of cycles taken: %d\n"+
			"Total Number of Instructions: %d\n"+
			"Cycles per instruction: %g\n"+
			"Instructions per cycle: %g\n",
		result.SS.Cycles, result.SS.Instructions, result.SS.CPI, result.SS.IPC,
		result.FS.Cycles, result.FS.Instructions, result.FS.CPI, result.FS.IPC)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
