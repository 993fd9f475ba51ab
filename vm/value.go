package vm

import (
	"fmt"
	"io"
	"unsafe"
)

// ValueFlag bits describe the nature of a ValueKind: whether it
// participates in Boolean algebra, numeric formatting, or pointer
// arithmetic, and whether Dump knows how to render it.
type ValueFlag uint16

const (
	FlagNone        ValueFlag = 0x0000
	FlagFormattable ValueFlag = 0x0100
	FlagLogical     ValueFlag = 0x1000
	FlagNumeric     ValueFlag = 0x2000
	FlagPointer     ValueFlag = 0x4000
)

// ValueKind is the type tag of a Value: one of Void, Bool, Byte, UInt,
// SInt, Real, VPtr, each carrying the flag bits that describe it.
type ValueKind uint16

const (
	KindVoid ValueKind = 0x00 | ValueKind(FlagNone)
	KindBool ValueKind = 0x01 | ValueKind(FlagLogical)
	KindByte ValueKind = 0x02 | ValueKind(FlagNumeric) | ValueKind(FlagFormattable)
	KindUInt ValueKind = 0x03 | ValueKind(FlagNumeric) | ValueKind(FlagFormattable)
	KindSInt ValueKind = 0x04 | ValueKind(FlagNumeric) | ValueKind(FlagFormattable)
	KindReal ValueKind = 0x05 | ValueKind(FlagNumeric) | ValueKind(FlagFormattable)
	KindVPtr ValueKind = 0x06 | ValueKind(FlagPointer)
)

func (k ValueKind) has(flag ValueFlag) bool { return k&ValueKind(flag) == ValueKind(flag) }

// IsLogical reports whether k participates in Boolean algebra (Bool).
func (k ValueKind) IsLogical() bool { return k.has(FlagLogical) }

// IsNumeric reports whether k is one of the numeric variants.
func (k ValueKind) IsNumeric() bool { return k.has(FlagNumeric) }

// IsPointer reports whether k is the pointer variant (VPtr).
func (k ValueKind) IsPointer() bool { return k.has(FlagPointer) }

// IsFormattable reports whether Dump has a type-specific numeric format
// for k, as opposed to the fixed strings used for Void/Bool/VPtr.
func (k ValueKind) IsFormattable() bool { return k.has(FlagFormattable) }

func (k ValueKind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindByte:
		return "byte"
	case KindUInt:
		return "uint"
	case KindSInt:
		return "sint"
	case KindReal:
		return "real"
	case KindVPtr:
		return "vptr"
	default:
		return "unknown"
	}
}

// Value is a uniformly-sized cell carrying one primitive scalar,
// self-describing enough for printing and runtime type checks. Go has no
// true union type; rather than box every payload behind an interface{},
// only the field matching Kind is populated — the rest sit at their zero
// value — trading a few unused bytes per Value for allocation-free
// numeric handling.
type Value struct {
	Kind ValueKind
	Size uint16 // number of bytes the active payload occupies
	Bool bool
	Byte byte
	UInt uint64
	SInt int64
	Real float64
	VPtr unsafe.Pointer
}

// VoidValue constructs the Void value.
func VoidValue() Value { return Value{Kind: KindVoid} }

// BoolValue constructs a Bool value.
func BoolValue(v bool) Value { return Value{Kind: KindBool, Size: 1, Bool: v} }

// ByteValue constructs a Byte value.
func ByteValue(v byte) Value { return Value{Kind: KindByte, Size: 1, Byte: v} }

// UIntValue constructs a UInt value.
func UIntValue(v uint64) Value { return Value{Kind: KindUInt, Size: 8, UInt: v} }

// SIntValue constructs an SInt value.
func SIntValue(v int64) Value { return Value{Kind: KindSInt, Size: 8, SInt: v} }

// RealValue constructs a Real value. Real is carried as float64: Go has
// no long double, so this is the widest formattable numeric type
// available, and the closest match to the original's payload.
func RealValue(v float64) Value { return Value{Kind: KindReal, Size: 8, Real: v} }

var vptrSize = uint16(unsafe.Sizeof(uintptr(0)))

// VPtrValue constructs a VPtr value wrapping an opaque pointer.
func VPtrValue(p unsafe.Pointer) Value { return Value{Kind: KindVPtr, Size: vptrSize, VPtr: p} }

// Dump writes a human-readable rendering of v to w and returns the
// number of bytes written. Formattable variants use type-specific
// numeric formats; Bool prints "true"/"false"; Void prints "void"; VPtr
// prints a fixed-width hexadecimal address. An unrecognized Kind returns
// (-1, err).
func Dump(w io.Writer, v Value) (int, error) {
	switch v.Kind {
	case KindVoid:
		return io.WriteString(w, "void")
	case KindBool:
		if v.Bool {
			return io.WriteString(w, "true")
		}
		return io.WriteString(w, "false")
	case KindByte:
		return fmt.Fprintf(w, "%02X", v.Byte)
	case KindUInt:
		return fmt.Fprintf(w, "%d", v.UInt)
	case KindSInt:
		return fmt.Fprintf(w, "%d", v.SInt)
	case KindReal:
		return fmt.Fprintf(w, "%g", v.Real)
	case KindVPtr:
		return fmt.Fprintf(w, "0x%0*X", int(vptrSize)*2, uintptr(v.VPtr))
	default:
		return -1, fmt.Errorf("dump: unknown value kind %d", uint16(v.Kind))
	}
}
