// Package identity derives stable identifiers for documents and chunks.
//
// Document ids are a function of the resolved source path, so re-adding the
// same file always maps to the same document. Chunk point ids are a function
// of the document id and chunk index, truncated to 60 bits because the vector
// index keys points numerically. Collisions across distinct inputs are
// possible in principle; the probability is negligible and a silent overwrite
// is the accepted failure mode.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
)

// DocID returns the document id for a resolved source path: the first 12 hex
// characters of the path's MD5. Deterministic and path-sensitive; no
// canonicalization happens here, callers pass an absolute path.
func DocID(sourcePath string) string {
	sum := md5.Sum([]byte(sourcePath))
	return hex.EncodeToString(sum[:])[:12]
}

// PointID returns the numeric vector-index key for a chunk: the low 60 bits
// (15 hex characters) of MD5("{docID}_{chunkIndex}").
func PointID(docID string, chunkIndex int) uint64 {
	combined := fmt.Sprintf("%s_%d", docID, chunkIndex)
	sum := md5.Sum([]byte(combined))
	hexStr := hex.EncodeToString(sum[:])[:15]
	id, err := strconv.ParseUint(hexStr, 16, 64)
	if err != nil {
		// 15 hex chars always parse into 64 bits; unreachable.
		panic("identity: invalid point id derivation: " + err.Error())
	}
	return id
}
