package asm

import "strconv"

// Registers with a fixed meaning in the VM memory map.
const (
	SP   = "SP"   // RAM[0], address of the next free stack cell
	LCL  = "LCL"  // RAM[1], base of the local segment
	ARG  = "ARG"  // RAM[2], base of the argument segment
	THIS = "THIS" // RAM[3], base of the this segment, pointer 0
	THAT = "THAT" // RAM[4], base of the that segment, pointer 1

	// Scratch registers used by pop and return sequences.
	R13 = "R13"
	R14 = "R14"
)

// Memory map of the Hack platform.
const (
	TempBase   = 5     // temp 0..7 live at RAM[5..12]
	TempSize   = 8     // number of temp cells
	StackBase  = 256   // first stack cell
	Screen     = 16384 // memory-mapped display
	Keyboard   = 24576 // memory-mapped keyboard
	RAMSize    = 32768 // addressable data words
	VarBase    = 16    // first address handed to assembler variables
	FrameSize  = 5     // return address + LCL ARG THIS THAT
	EntryPoint = "Sys.init"
)

// Predefined returns the symbol table every Hack program starts with.
func Predefined() map[string]int {
	symbols := map[string]int{
		SP:       0,
		LCL:      1,
		ARG:      2,
		THIS:     3,
		THAT:     4,
		"SCREEN": Screen,
		"KBD":    Keyboard,
	}
	for i := 0; i < 16; i++ {
		symbols["R"+strconv.Itoa(i)] = i
	}
	return symbols
}
