package vm

// Opcode is the 8-bit leading byte of an instruction. 0x00 is reserved
// for nop.
type Opcode uint8

// InstrKind tags the argument layout that follows an opcode. The high
// byte is the total instruction width in bytes (opcode plus operands);
// the low byte is an opaque layout identifier. Kind(k) >> 8 therefore
// always yields the instruction's width, mirroring the original table's
// cloxGetOpKindSize macro.
type InstrKind uint16

// Width returns the total instruction width in bytes, opcode included.
func (k InstrKind) Width() int { return int(k >> 8) }

const (
	// KindByte: opcode only.
	KindByte InstrKind = 0x0101
	// KindFast: opcode + one 8-bit register/index.
	KindFast InstrKind = 0x0202
	// KindCtrl: opcode + one 16-bit index + one 8-bit flag.
	KindCtrl InstrKind = 0x0403
	// KindData: opcode + 8-bit dst register + 16-bit source index.
	KindData InstrKind = 0x0404
	// KindRegs: opcode + three 8-bit register fields.
	KindRegs InstrKind = 0x0405
	// KindLong: opcode + 8-bit dst + two 16-bit source indices.
	KindLong InstrKind = 0x0606
	// KindJump: opcode + 32-bit signed displacement + 8-bit flag.
	KindJump InstrKind = 0x0607
	// KindFull: opcode + three 16-bit fields + 8-bit flag.
	KindFull InstrKind = 0x0808
)

func (k InstrKind) String() string {
	switch k {
	case KindByte:
		return "byte"
	case KindFast:
		return "fast"
	case KindCtrl:
		return "ctrl"
	case KindData:
		return "data"
	case KindRegs:
		return "regs"
	case KindLong:
		return "long"
	case KindJump:
		return "jump"
	case KindFull:
		return "full"
	default:
		return "unknown"
	}
}

// ExecFunc is the optional dispatch handle a future interpreter stage
// would hang off an OpcodeInfo. No opcode in this module binds one; it
// exists purely as the placeholder slot the descriptor model reserves.
type ExecFunc func()

// OpcodeInfo is the immutable descriptor for one opcode: its display
// name, numeric code, and kind. Exec is always nil in this module.
type OpcodeInfo struct {
	Name string
	Code Opcode
	Kind InstrKind
	Exec ExecFunc
}

// opcodeDescriptors is the single declarative source the opcode table,
// and any future handler dispatch, are built from. Opcode 0x00 is always
// nop with KindByte, as required.
//
// Beyond nop, this defines a representative instruction for each of the
// eight kinds so the disassembler and its tests exercise every layout;
// none of them carry execution semantics.
var opcodeDescriptors = []OpcodeInfo{
	{Name: "nop", Code: 0x00, Kind: KindByte},
	{Name: "pop", Code: 0x01, Kind: KindByte},
	{Name: "dup", Code: 0x02, Kind: KindByte},

	{Name: "pushb", Code: 0x10, Kind: KindFast},
	{Name: "rload", Code: 0x11, Kind: KindFast},
	{Name: "rstore", Code: 0x12, Kind: KindFast},

	{Name: "jumpidx", Code: 0x20, Kind: KindCtrl},
	{Name: "trapidx", Code: 0x21, Kind: KindCtrl},

	{Name: "ldconst", Code: 0x30, Kind: KindData},
	{Name: "ldglobal", Code: 0x31, Kind: KindData},

	{Name: "addr", Code: 0x40, Kind: KindRegs},
	{Name: "subr", Code: 0x41, Kind: KindRegs},
	{Name: "mulr", Code: 0x42, Kind: KindRegs},

	{Name: "call", Code: 0x50, Kind: KindLong},
	{Name: "loadfield", Code: 0x51, Kind: KindLong},

	{Name: "jmp", Code: 0x60, Kind: KindJump},
	{Name: "jz", Code: 0x61, Kind: KindJump},
	{Name: "jnz", Code: 0x62, Kind: KindJump},

	{Name: "invoke", Code: 0x70, Kind: KindFull},
	{Name: "newobj", Code: 0x71, Kind: KindFull},
}

var opcodeTable [256]*OpcodeInfo

func init() {
	for i := range opcodeDescriptors {
		info := opcodeDescriptors[i]
		opcodeTable[info.Code] = &info
	}
}

// GetOpcodeInfo looks up the descriptor for code. When code has no
// registered descriptor it returns (false, descriptor) where descriptor
// is the synthetic "unknown"/KindByte placeholder; the returned name is
// never empty either way.
func GetOpcodeInfo(code Opcode) (bool, OpcodeInfo) {
	if info := opcodeTable[code]; info != nil {
		return true, *info
	}
	return false, OpcodeInfo{Name: "unknown", Code: code, Kind: KindByte}
}
