package bytecode

// SourceCode is the compiled function object the driver recompiles: a
// linear byte string of stack-machine instructions, a constant pool size,
// and a local-variable count. It is immutable after construction.
type SourceCode struct {
	name       string
	filename   string
	codeBytes  []byte
	numConsts  uint32
	numLocals  uint32
}

// SourceCodeParams holds constructor parameters for SourceCode.
type SourceCodeParams struct {
	// Name is an optional human-readable function name, used only for
	// diagnostics (errz messages, ledger rows, disassembly headers).
	Name string

	// Filename is an optional origin filename, used only for diagnostics.
	Filename string

	// CodeBytes is the source stack-machine instruction stream: opcode
	// byte followed, when op.Info.HasArg is true, by two little-endian
	// immediate bytes.
	CodeBytes []byte

	// NumConsts is the size of the constant pool. Registers
	// [0, NumConsts) alias constant-pool slots.
	NumConsts uint32

	// NumLocals is the number of named local variable slots. Registers
	// [NumConsts, NumConsts+NumLocals) alias local slots.
	NumLocals uint32
}

// NewSourceCode creates an immutable SourceCode from the given
// parameters. The input byte slice is copied so the caller cannot mutate
// it after construction.
func NewSourceCode(params SourceCodeParams) *SourceCode {
	codeBytes := make([]byte, len(params.CodeBytes))
	copy(codeBytes, params.CodeBytes)
	return &SourceCode{
		name:      params.Name,
		filename:  params.Filename,
		codeBytes: codeBytes,
		numConsts: params.NumConsts,
		numLocals: params.NumLocals,
	}
}

// Name returns the function's human-readable name, or "" if unset.
func (c *SourceCode) Name() string {
	return c.name
}

// Filename returns the origin filename, or "" if unset.
func (c *SourceCode) Filename() string {
	return c.filename
}

// CodeBytes returns a defensive copy of the source instruction stream.
func (c *SourceCode) CodeBytes() []byte {
	out := make([]byte, len(c.codeBytes))
	copy(out, c.codeBytes)
	return out
}

// CodeLen returns the length in bytes of the source instruction stream.
func (c *SourceCode) CodeLen() int {
	return len(c.codeBytes)
}

// ByteAt returns the raw byte at index i of the source instruction
// stream.
func (c *SourceCode) ByteAt(i int) byte {
	return c.codeBytes[i]
}

// NumConsts returns the size of the constant pool.
func (c *SourceCode) NumConsts() uint32 {
	return c.numConsts
}

// NumLocals returns the number of local variable slots.
func (c *SourceCode) NumLocals() uint32 {
	return c.numLocals
}
