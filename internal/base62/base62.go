// Package base62 converts record ids to the short tokens used in links.
package base62

import (
	"errors"
	"math"
	"strings"
)

// alphabet order is part of the wire contract: tokens issued by one
// deployment must decode identically everywhere.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const base = int64(len(alphabet))

// ErrInvalidToken is returned by Decode for empty input or any character
// outside the 62-symbol alphabet.
var ErrInvalidToken = errors.New("invalid token")

// Encode returns the base62 token for id. Ids are non-negative; a
// negative id has no token and yields the empty string, which Decode
// rejects. Encode(0) is "0"; a plain repeated-division loop would emit
// nothing for zero.
func Encode(id int64) string {
	if id < 0 {
		return ""
	}
	if id == 0 {
		return "0"
	}

	var buf [11]byte // 2^63-1 fits in 11 base62 digits
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = alphabet[id%base]
		id /= base
	}
	return string(buf[i:])
}

// Decode evaluates the token as a base62 positional number, left to right.
func Decode(token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}

	var id int64
	for i := 0; i < len(token); i++ {
		d := strings.IndexByte(alphabet, token[i])
		if d < 0 {
			return 0, ErrInvalidToken
		}
		// A token whose value exceeds int64 can never name a record;
		// wrapping here would alias it onto an assigned id.
		if id > (math.MaxInt64-int64(d))/base {
			return 0, ErrInvalidToken
		}
		id = id*base + int64(d)
	}
	return id, nil
}
