// Package op defines the source stack-machine opcode set consumed by the
// registerizer, and the static OpcodeInfo oracle used throughout the core
// to classify each opcode's shape (does it carry an immediate, is it a
// branch, does it take a variable number of operands, is it pure, and how
// many bytes wide is its encoding).
//
// The opcode set mirrors the classic CPython-style stack bytecode this
// core recompiles. It is treated as a closed, static table: the front-end
// that produces source bytecode and the interpreter that would otherwise
// execute it directly are both out of scope for this repository.
package op

// TableVersion identifies the revision of the opcode table below. A
// cache keyed on source bytes alone would silently serve a stale
// compilation if this table's semantics ever changed; callers that
// content-address compiled output (package cache) fold this into the
// digest so a table change invalidates every cached entry.
const TableVersion = "1"

// Code identifies a source (stack-machine) opcode.
type Code uint8

const (
	Invalid Code = 0

	Nop      Code = 1
	RotTwo   Code = 2
	RotThree Code = 3
	PopTop   Code = 4
	DupTop   Code = 5

	LoadConst   Code = 10
	LoadFast    Code = 11
	LoadAttr    Code = 12
	LoadGlobal  Code = 13
	LoadName    Code = 14
	LoadDeref   Code = 15
	LoadClosure Code = 16
	LoadLocals  Code = 17

	StoreFast   Code = 20
	StoreAttr   Code = 21
	StoreGlobal Code = 22
	StoreName   Code = 23
	StoreDeref  Code = 24
	StoreSubscr Code = 25
	StoreMap    Code = 26

	DeleteSlice0 Code = 30
	DeleteSlice1 Code = 31
	DeleteSlice2 Code = 32
	DeleteSlice3 Code = 33

	StoreSlice0 Code = 34
	StoreSlice1 Code = 35
	StoreSlice2 Code = 36
	StoreSlice3 Code = 37

	Slice0 Code = 38
	Slice1 Code = 39
	Slice2 Code = 40
	Slice3 Code = 41

	UnaryNot      Code = 50
	UnaryNegative Code = 51
	UnaryPositive Code = 52
	UnaryInvert   Code = 53

	BinaryAdd      Code = 60
	BinarySubtract Code = 61
	BinaryMultiply Code = 62
	BinaryDivide   Code = 63
	BinaryModulo   Code = 64
	BinaryPower    Code = 65
	BinaryAnd      Code = 66
	BinaryOr       Code = 67
	BinaryXor      Code = 68
	BinarySubscr   Code = 69
	CompareOp      Code = 70

	BuildTuple Code = 80
	BuildList  Code = 81
	BuildSet   Code = 82
	BuildMap   Code = 83

	ListAppend Code = 84

	ConstIndex Code = 90

	UnpackSequence Code = 100

	GetIter Code = 110
	ForIter Code = 111

	SetupLoop    Code = 120
	PopBlock     Code = 121
	BreakLoop    Code = 122
	ContinueLoop Code = 123

	JumpForward      Code = 130
	JumpAbsolute     Code = 131
	PopJumpIfFalse   Code = 132
	PopJumpIfTrue    Code = 133
	JumpIfFalseOrPop Code = 134
	JumpIfTrueOrPop  Code = 135

	CallFunction      Code = 140
	CallFunctionVar   Code = 141
	CallFunctionKw    Code = 142
	CallFunctionVarKw Code = 143

	ReturnValue Code = 150

	RaiseVarargs Code = 160

	PrintItem      Code = 170
	PrintNewline   Code = 171
	PrintItemTo    Code = 172
	PrintNewlineTo Code = 173

	// Unsupported by design (spec.md Non-goals): recognized only so that
	// InstrSize/HasArg can be resolved when they are rejected explicitly
	// by the registerizer rather than mis-decoded.
	EndFinally   Code = 200
	YieldValue   Code = 201
	SetupExcept  Code = 202
	SetupFinally Code = 203
	MakeFunction Code = 204
	MakeClosure  Code = 205
	ImportName   Code = 206
	ImportFrom   Code = 207
	ImportStar   Code = 208
)

// Info describes the static shape of an opcode.
type Info struct {
	Code      Code
	Name      string
	HasArg    bool
	IsBranch  bool
	IsVarargs bool
	IsPure    bool
}

// InstrSize returns the encoded width in bytes of an instruction with this
// opcode: 1 when it carries no immediate, 3 when it does (one opcode byte
// plus two little-endian bytes of immediate).
func (i Info) InstrSize() int {
	if i.HasArg {
		return 3
	}
	return 1
}

var infos = make(map[Code]Info, 128)

func register(code Code, name string, hasArg, isBranch, isVarargs, isPure bool) {
	infos[code] = Info{Code: code, Name: name, HasArg: hasArg, IsBranch: isBranch, IsVarargs: isVarargs, IsPure: isPure}
}

func init() {
	register(Nop, "NOP", false, false, false, false)
	register(RotTwo, "ROT_TWO", false, false, false, false)
	register(RotThree, "ROT_THREE", false, false, false, false)
	register(PopTop, "POP_TOP", false, false, false, false)
	register(DupTop, "DUP_TOP", false, false, false, false)

	register(LoadConst, "LOAD_CONST", true, false, false, true)
	register(LoadFast, "LOAD_FAST", true, false, false, true)
	register(LoadAttr, "LOAD_ATTR", true, false, false, false)
	register(LoadGlobal, "LOAD_GLOBAL", true, false, false, true)
	register(LoadName, "LOAD_NAME", true, false, false, true)
	register(LoadDeref, "LOAD_DEREF", true, false, false, true)
	register(LoadClosure, "LOAD_CLOSURE", true, false, false, true)
	register(LoadLocals, "LOAD_LOCALS", false, false, false, true)

	register(StoreFast, "STORE_FAST", true, false, false, true)
	register(StoreAttr, "STORE_ATTR", true, false, false, false)
	register(StoreGlobal, "STORE_GLOBAL", true, false, false, false)
	register(StoreName, "STORE_NAME", true, false, false, false)
	register(StoreDeref, "STORE_DEREF", true, false, false, false)
	register(StoreSubscr, "STORE_SUBSCR", false, false, false, false)
	register(StoreMap, "STORE_MAP", false, false, false, false)

	register(DeleteSlice0, "DELETE_SLICE+0", false, false, false, false)
	register(DeleteSlice1, "DELETE_SLICE+1", false, false, false, false)
	register(DeleteSlice2, "DELETE_SLICE+2", false, false, false, false)
	register(DeleteSlice3, "DELETE_SLICE+3", false, false, false, false)

	register(StoreSlice0, "STORE_SLICE+0", false, false, false, false)
	register(StoreSlice1, "STORE_SLICE+1", false, false, false, false)
	register(StoreSlice2, "STORE_SLICE+2", false, false, false, false)
	register(StoreSlice3, "STORE_SLICE+3", false, false, false, false)

	register(Slice0, "SLICE+0", false, false, false, false)
	register(Slice1, "SLICE+1", false, false, false, false)
	register(Slice2, "SLICE+2", false, false, false, false)
	register(Slice3, "SLICE+3", false, false, false, false)

	register(UnaryNot, "UNARY_NOT", false, false, false, false)
	register(UnaryNegative, "UNARY_NEGATIVE", false, false, false, false)
	register(UnaryPositive, "UNARY_POSITIVE", false, false, false, false)
	register(UnaryInvert, "UNARY_INVERT", false, false, false, false)

	register(BinaryAdd, "BINARY_ADD", false, false, false, false)
	register(BinarySubtract, "BINARY_SUBTRACT", false, false, false, false)
	register(BinaryMultiply, "BINARY_MULTIPLY", false, false, false, false)
	register(BinaryDivide, "BINARY_DIVIDE", false, false, false, false)
	register(BinaryModulo, "BINARY_MODULO", false, false, false, false)
	register(BinaryPower, "BINARY_POWER", false, false, false, false)
	register(BinaryAnd, "BINARY_AND", false, false, false, false)
	register(BinaryOr, "BINARY_OR", false, false, false, false)
	register(BinaryXor, "BINARY_XOR", false, false, false, false)
	register(BinarySubscr, "BINARY_SUBSCR", false, false, false, false)
	register(CompareOp, "COMPARE_OP", true, false, false, false)

	register(BuildTuple, "BUILD_TUPLE", true, false, true, true)
	register(BuildList, "BUILD_LIST", true, false, true, true)
	register(BuildSet, "BUILD_SET", true, false, true, true)
	register(BuildMap, "BUILD_MAP", true, false, false, true)

	register(ListAppend, "LIST_APPEND", true, false, false, false)

	register(ConstIndex, "CONST_INDEX", true, false, false, true)

	register(UnpackSequence, "UNPACK_SEQUENCE", true, false, false, false)

	register(GetIter, "GET_ITER", false, false, false, false)
	register(ForIter, "FOR_ITER", true, true, false, false)

	register(SetupLoop, "SETUP_LOOP", true, false, false, false)
	register(PopBlock, "POP_BLOCK", false, false, false, false)
	register(BreakLoop, "BREAK_LOOP", false, true, false, false)
	register(ContinueLoop, "CONTINUE_LOOP", true, true, false, false)

	register(JumpForward, "JUMP_FORWARD", true, true, false, false)
	register(JumpAbsolute, "JUMP_ABSOLUTE", true, true, false, false)
	register(PopJumpIfFalse, "POP_JUMP_IF_FALSE", true, true, false, false)
	register(PopJumpIfTrue, "POP_JUMP_IF_TRUE", true, true, false, false)
	register(JumpIfFalseOrPop, "JUMP_IF_FALSE_OR_POP", true, true, false, false)
	register(JumpIfTrueOrPop, "JUMP_IF_TRUE_OR_POP", true, true, false, false)

	register(CallFunction, "CALL_FUNCTION", true, false, true, false)
	register(CallFunctionVar, "CALL_FUNCTION_VAR", true, false, true, false)
	register(CallFunctionKw, "CALL_FUNCTION_KW", true, false, true, false)
	register(CallFunctionVarKw, "CALL_FUNCTION_VAR_KW", true, false, true, false)

	register(ReturnValue, "RETURN_VALUE", false, true, false, false)

	register(RaiseVarargs, "RAISE_VARARGS", true, false, false, false)

	register(PrintItem, "PRINT_ITEM", false, false, false, false)
	register(PrintNewline, "PRINT_NEWLINE", false, false, false, false)
	register(PrintItemTo, "PRINT_ITEM_TO", false, false, false, false)
	register(PrintNewlineTo, "PRINT_NEWLINE_TO", false, false, false, false)

	register(EndFinally, "END_FINALLY", false, false, false, false)
	register(YieldValue, "YIELD_VALUE", false, false, false, false)
	register(SetupExcept, "SETUP_EXCEPT", true, false, false, false)
	register(SetupFinally, "SETUP_FINALLY", true, false, false, false)
	register(MakeFunction, "MAKE_FUNCTION", true, false, false, true)
	register(MakeClosure, "MAKE_CLOSURE", true, false, false, true)
	register(ImportName, "IMPORT_NAME", true, false, false, false)
	register(ImportFrom, "IMPORT_FROM", true, false, false, false)
	register(ImportStar, "IMPORT_STAR", false, false, false, false)
}

// GetInfo returns the static classification for the given opcode. The
// returned ok is false for opcodes not present in the table at all
// (a raw byte the registerizer has never heard of); opcodes that are
// known but deliberately unsupported (END_FINALLY, YIELD_VALUE, ...)
// are present in the table with ok=true so that InstrSize can still
// decode past them while the registerizer separately rejects them.
func GetInfo(code Code) (Info, bool) {
	info, ok := infos[code]
	return info, ok
}

// Name returns the opcode's mnemonic, or "UNKNOWN" if the opcode was
// never registered.
func Name(code Code) string {
	if info, ok := infos[code]; ok {
		return info.Name
	}
	return "UNKNOWN"
}

// Registerizable reports whether the registerizer implements semantics for
// this opcode. Opcodes registered purely so InstrSize can skip past them
// (END_FINALLY, YIELD_VALUE, SETUP_EXCEPT, SETUP_FINALLY, MAKE_FUNCTION,
// MAKE_CLOSURE, IMPORT_*) are excluded per spec.md's Non-goals.
func Registerizable(code Code) bool {
	switch code {
	case EndFinally, YieldValue, SetupExcept, SetupFinally, MakeFunction, MakeClosure, ImportName, ImportFrom, ImportStar:
		return false
	}
	_, ok := infos[code]
	return ok
}

// GetArg decodes the little-endian immediate for an instruction beginning
// at index i in code: bytes[i+1] | (bytes[i+2] << 8).
func GetArg(code []byte, i int) int {
	return int(code[i+1]) | (int(code[i+2]) << 8)
}
