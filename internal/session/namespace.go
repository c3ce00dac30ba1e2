package session

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Namespacer derives storage namespaces from browser session ids with a keyed hash, so
// raw cookie values never appear in storage keys or logs.
type Namespacer struct {
	secret []byte
}

// NewNamespacer builds a Namespacer. blake2b accepts keys up to 64 bytes; longer secrets
// are hashed down first.
func NewNamespacer(secret string) *Namespacer {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	return &Namespacer{secret: key}
}

// Namespace returns the hex-encoded 128-bit keyed digest of sessionID.
func (n *Namespacer) Namespace(sessionID string) string {
	h, err := blake2b.New(16, n.secret)
	if err != nil {
		// only reachable with an oversized key, which NewNamespacer prevents
		sum := blake2b.Sum256([]byte(sessionID))
		return hex.EncodeToString(sum[:16])
	}
	h.Write([]byte(sessionID))
	return hex.EncodeToString(h.Sum(nil))
}

// Ref is a short namespace prefix suitable for log correlation.
func (n *Namespacer) Ref(sessionID string) string {
	return n.Namespace(sessionID)[:12]
}
