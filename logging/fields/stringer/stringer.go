package stringer

import (
	"encoding/hex"
	"strconv"
)

// HexStringer hex-encodes a byte slice lazily, at log-encoding time.
type HexStringer struct {
	Val []byte
}

func (h HexStringer) String() string {
	return hex.EncodeToString(h.Val)
}

type Uint64Stringer struct {
	Val uint64
}

func (s Uint64Stringer) String() string {
	return strconv.FormatUint(s.Val, 10)
}

type Float64Stringer struct {
	Val float64
}

func (s Float64Stringer) String() string {
	return strconv.FormatFloat(s.Val, 'f', -1, 64)
}

type FuncStringer struct {
	Fn func() string
}

func (s FuncStringer) String() string {
	return s.Fn()
}
