package runtime

import (
	"encoding/binary"
	"math"
)

const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

const (
	tagVoid byte = iota
	tagNull
	tagInteger
	tagFloat
	tagString
	tagStruct
)

// HashBytes feeds the FNV-1a state with additional data.
func HashBytes(hash uint64, data []byte) uint64 {
	for _, b := range data {
		hash ^= uint64(b)
		hash *= fnvPrime64
	}
	return hash
}

// Hash returns a structural FNV-1a digest: values that are Equal hash equal.
func Hash(v Value) uint64 {
	return hashInto(fnvOffset64, v)
}

func hashInto(hash uint64, v Value) uint64 {
	var buf [8]byte
	switch val := v.(type) {
	case IntegerValue:
		hash = HashBytes(hash, []byte{tagInteger})
		binary.BigEndian.PutUint64(buf[:], uint64(val.Val))
		return HashBytes(hash, buf[:])
	case FloatValue:
		hash = HashBytes(hash, []byte{tagFloat})
		f := val.Val
		if f == 0 {
			f = 0 // fold -0 into +0
		}
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
		return HashBytes(hash, buf[:])
	case StringValue:
		hash = HashBytes(hash, []byte{tagString})
		binary.BigEndian.PutUint64(buf[:], uint64(len(val.Val)))
		hash = HashBytes(hash, buf[:])
		return HashBytes(hash, []byte(val.Val))
	case *StructInstanceValue:
		if val == nil {
			return HashBytes(hash, []byte{tagNull})
		}
		hash = HashBytes(hash, []byte{tagStruct})
		hash = HashBytes(hash, []byte(val.Type.Name()))
		for _, field := range val.Fields {
			hash = hashInto(hash, field)
		}
		return hash
	case NullValue:
		return HashBytes(hash, []byte{tagNull})
	default:
		return HashBytes(hash, []byte{tagVoid})
	}
}
