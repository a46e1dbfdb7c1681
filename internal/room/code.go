package room

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

// Alphabet for room codes. Drops the visually ambiguous O/0, I/1/L and S/5
// so codes survive being read aloud or typed from a screenshot.
const codeAlphabet = "ABCDEFGHJKMNPQRTUVWXYZ2346789"

const (
	codeLength      = 5
	maxCodeAttempts = 100
)

// generateCode returns a fresh code not present in existing. Uniform modulo
// reduction over a 29-symbol alphabet has negligible bias for this use.
// After maxCodeAttempts collisions it falls back to a random prefix plus a
// time-derived suffix so the loop is bounded.
func generateCode(existing map[string]*Room) string {
	buf := make([]byte, codeLength)

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		if _, err := rand.Read(buf); err != nil {
			break
		}
		code := encode(buf)
		if _, taken := existing[code]; !taken {
			return code
		}
	}

	prefix := make([]byte, 3)
	_, _ = rand.Read(prefix)
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ToUpper(ts[len(ts)-2:])
	return encode(prefix) + suffix
}

func encode(buf []byte) string {
	var sb strings.Builder
	sb.Grow(len(buf))
	for _, b := range buf {
		sb.WriteByte(codeAlphabet[int(b)%len(codeAlphabet)])
	}
	return sb.String()
}
