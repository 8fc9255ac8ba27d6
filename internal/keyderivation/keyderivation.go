// Package keyderivation produces stable, collision-resistant cache keys
// from tuples of string fields, used identically by every instance cache
// in this module so that keys are deterministic across processes and runs.
package keyderivation

import (
	"crypto/md5" //nolint:gosec // used for uniformity/collision-resistance, not security
	"encoding/hex"
	"strings"
)

// Derive joins fields with ':' and returns the lowercase hex of their MD5
// digest. Fields are not normalized (no case-folding, no trimming) — equal
// inputs produce equal keys, unequal inputs produce unequal keys with
// overwhelming probability. A field containing ':' is accepted as-is; the
// digest, not the separator, is what gives distinctness.
func Derive(fields ...string) string {
	joined := strings.Join(fields, ":")
	sum := md5.Sum([]byte(joined)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
