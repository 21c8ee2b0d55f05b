// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package objectstore

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// DigestMetadataKey is the object metadata key holding the digest.
const DigestMetadataKey = "blake3"

// Digest returns the hex-encoded BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
