// Package emu provides functional RV32I emulation.
package emu

import (
	"encoding/binary"
	"fmt"
)

// DataMemSize is the data memory capacity in bytes. The full address
// space would be 2^32 bytes; the image is kept at the reference size
// while remaining 32-bit addressable.
const DataMemSize = 1000

// InstructionMem is a read-only, word-indexed instruction memory.
// Instruction words are stored most-significant byte first.
type InstructionMem struct {
	bytes []byte
}

// NewInstructionMem creates an instruction memory over a program image.
func NewInstructionMem(image []byte) *InstructionMem {
	return &InstructionMem{bytes: image}
}

// ReadWord returns the 32-bit instruction word at addr & ^3.
// Reads beyond the loaded image are fatal.
func (m *InstructionMem) ReadWord(addr uint32) (uint32, error) {
	addr &^= 3
	if int(addr)+4 > len(m.bytes) {
		return 0, fmt.Errorf("instruction memory: out of bound access at address %d", addr)
	}
	return binary.BigEndian.Uint32(m.bytes[addr:]), nil
}

// Size returns the length of the loaded image in bytes.
func (m *InstructionMem) Size() int {
	return len(m.bytes)
}

// DataMem is a byte-addressable data memory with word-aligned 32-bit
// access. The image is zero-filled to DataMemSize at construction;
// stores past the current length extend it with zero bytes.
type DataMem struct {
	bytes []byte
}

// NewDataMem creates a data memory from an initial image.
func NewDataMem(image []byte) *DataMem {
	m := &DataMem{bytes: make([]byte, 0, DataMemSize)}
	m.bytes = append(m.bytes, image...)
	for len(m.bytes) < DataMemSize {
		m.bytes = append(m.bytes, 0)
	}
	return m
}

// ReadWord returns the 32-bit value at addr & ^3.
// Reads beyond the current length are fatal.
func (m *DataMem) ReadWord(addr uint32) (uint32, error) {
	addr &^= 3
	if int(addr)+4 > len(m.bytes) {
		return 0, fmt.Errorf("data memory: out of bound access at address %d", addr)
	}
	return binary.BigEndian.Uint32(m.bytes[addr:]), nil
}

// WriteWord stores a 32-bit value at addr & ^3, extending the memory
// with zero bytes if the address lies past the current length.
func (m *DataMem) WriteWord(addr uint32, value uint32) {
	addr &^= 3
	for int(addr)+4 > len(m.bytes) {
		m.bytes = append(m.bytes, 0)
	}
	binary.BigEndian.PutUint32(m.bytes[addr:], value)
}

// Bytes returns the current memory contents.
func (m *DataMem) Bytes() []byte {
	return m.bytes
}
