package splat

import (
	"encoding/binary"
	"math"

	"github.com/mrjoshuak/go-openexr/half"
)

func float32Bytes(src []float32) []byte {
	buf := make([]byte, 4*len(src))
	for i, v := range src {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func halfBytes(src []half.Half) []byte {
	buf := make([]byte, 2*len(src))
	for i, v := range src {
		binary.LittleEndian.PutUint16(buf[2*i:], v.Bits())
	}
	return buf
}

func uint32Bytes(src []uint32) []byte {
	buf := make([]byte, 4*len(src))
	for i, v := range src {
		binary.LittleEndian.PutUint32(buf[4*i:], v)
	}
	return buf
}
