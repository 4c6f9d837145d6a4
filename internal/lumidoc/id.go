package lumidoc

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// ID generation for spans, contents, sections, and answers. IDs are ULIDs
// (26-character Crockford Base32, timestamp-prefixed) with a short type
// prefix, e.g. "s-01J8ZK...". The timestamp prefix keeps IDs sortable in
// creation order, which preserves document order for spans minted during a
// single import.

var (
	idMu   sync.Mutex
	idLast uint64
	idSeq  uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewID returns a fresh unique identifier with the given prefix.
func NewID(prefix string) string {
	idMu.Lock()
	defer idMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == idLast {
		idSeq++
	} else {
		idLast = ts
		idSeq = 0
	}

	var b [16]byte
	// 48-bit big-endian timestamp, then 10 random bytes with the sequence
	// counter folded into the first two for same-millisecond uniqueness.
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], idSeq)

	if prefix == "" {
		return encodeCrockford(b)
	}
	return prefix + "-" + encodeCrockford(b)
}

// encodeCrockford renders 128 bits as 26 Base32 characters. The first
// character carries only the top 3 bits (130 output bits, 2 leading zeros).
func encodeCrockford(b [16]byte) string {
	out := make([]byte, 26)
	for i := range out {
		start := i*5 - 2
		v := 0
		for j := range 5 {
			bit := start + j
			v <<= 1
			if bit >= 0 && b[bit/8]&(1<<(7-bit%8)) != 0 {
				v |= 1
			}
		}
		out[i] = crockford[v]
	}
	return string(out)
}
