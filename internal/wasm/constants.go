package wasm

const (
	Magic   uint32 = 0x6D736100 // "\0asm"
	Version uint32 = 0x01
)

// Section IDs, in the order they must appear.
const (
	SectionType     byte = 1
	SectionImport   byte = 2
	SectionFunction byte = 3
	SectionMemory   byte = 5
	SectionGlobal   byte = 6
	SectionExport   byte = 7
	SectionCode     byte = 10
)

// Import/export descriptor kinds.
const (
	KindFunc   byte = 0
	KindMemory byte = 2
	KindGlobal byte = 3
)

const (
	ValI32 ValType = 0x7F
	ValI64 ValType = 0x7E
	ValF32 ValType = 0x7D
	ValF64 ValType = 0x7C
)

const (
	FuncTypeByte   byte = 0x60
	BlockTypeEmpty byte = 0x40
	LimitsHasMax   byte = 0x01
)

// Opcodes used by boundary glue.
const (
	OpUnreachable byte = 0x00
	OpBlock       byte = 0x02
	OpIf          byte = 0x04
	OpElse        byte = 0x05
	OpEnd         byte = 0x0B
	OpReturn      byte = 0x0F
	OpCall        byte = 0x10
	OpDrop        byte = 0x1A
	OpSelect      byte = 0x1B

	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24

	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpI32Eqz   byte = 0x45
	OpI32LtU   byte = 0x49
	OpI32Add   byte = 0x6A
	OpI32Sub   byte = 0x6B
	OpI32And   byte = 0x71

	OpPrefixFC     byte = 0xFC
	OpMemoryCopyFC byte = 0x0A // memory.copy after the 0xFC prefix
)
