// Package align provides the capacity-rounding helper shared by every
// growable buffer in corevm.
package align

import "golang.org/x/exp/constraints"

// RoundUp rounds n up to the nearest multiple of align, which must be a
// power of two. RoundUp(0, align) is 0.
func RoundUp[T constraints.Integer](n, align T) T {
	return (n + (align - 1)) &^ (align - 1)
}
