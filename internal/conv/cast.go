package conv

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/textidx/model"
)

// ErrOverflow is wrapped by every conversion error.
var ErrOverflow = errors.New("integer overflow")

// Uint64ToInt64 converts uint64 to int64 safely.
func Uint64ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d cannot be converted to int64 (too large)", ErrOverflow, v)
	}
	return int64(v), nil
}

// RowID converts a row counter to a RowID. Row ids are 32-bit because
// postings are 32-bit roaring bitmaps.
func RowID(n uint64) (model.RowID, error) {
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: row %d exceeds the 32-bit row id space", ErrOverflow, n)
	}
	return model.RowID(n), nil
}
