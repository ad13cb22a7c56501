package persistent

import (
	"bytes"
	"fmt"
)

// A Key has a sort order. Implement it to store custom key types in a
// Map.
type Key interface {
	// Order returns -1 if this key sorts before the argument, 1 if it
	// sorts after it, and 0 if they are equal.
	Order(Key) int
}

// DefaultKeyCompare orders keys of type string, int, uint, int64, uint64
// and []byte, and anything implementing Key. Keys of any other type, or
// two keys of different types, return an error.
func DefaultKeyCompare(i, i2 interface{}) (int, error) {
	switch v := i.(type) {
	case Key:
		if v2, ok := i2.(Key); ok {
			return v.Order(v2), nil
		}
	case string:
		if v2, ok := i2.(string); ok {
			if v < v2 {
				return -1, nil
			} else if v > v2 {
				return 1, nil
			}
			return 0, nil
		}
	case int:
		if v2, ok := i2.(int); ok {
			if v < v2 {
				return -1, nil
			} else if v > v2 {
				return 1, nil
			}
			return 0, nil
		}
	case uint:
		if v2, ok := i2.(uint); ok {
			if v < v2 {
				return -1, nil
			} else if v > v2 {
				return 1, nil
			}
			return 0, nil
		}
	case int64:
		if v2, ok := i2.(int64); ok {
			if v < v2 {
				return -1, nil
			} else if v > v2 {
				return 1, nil
			}
			return 0, nil
		}
	case uint64:
		if v2, ok := i2.(uint64); ok {
			if v < v2 {
				return -1, nil
			} else if v > v2 {
				return 1, nil
			}
			return 0, nil
		}
	case []byte:
		if v2, ok := i2.([]byte); ok {
			return bytes.Compare(v, v2), nil
		}
	}
	return -1, fmt.Errorf("don't know how to compare %T with %T; implement the Key interface", i, i2)
}
