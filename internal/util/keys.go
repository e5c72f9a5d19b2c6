package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// HashKey returns prefix + ":" + the first 128 bits of SHA-256(b) in hex.
// An empty prefix yields the bare hash.
func HashKey(prefix string, b []byte) string {
	sum := sha256.Sum256(b)
	h := hex.EncodeToString(sum[:16])
	if prefix == "" {
		return h
	}
	return prefix + ":" + h
}

// SpanKey is the record key for the exact interval [start,end]. It is
// injective over (start, end): when either side contains a comma or a quote
// both sides are quoted, so ("a,b","c") and ("a","b,c") stay distinct.
func SpanKey(start, end string) string {
	if strings.ContainsAny(start, `,"`) || strings.ContainsAny(end, `,"`) {
		return "[" + strconv.Quote(start) + "," + strconv.Quote(end) + "]"
	}
	return "[" + start + "," + end + "]"
}
