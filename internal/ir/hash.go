package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed digests. The version suffix
// enables future algorithm migration without colliding with old digests.
const (
	DomainNodeSet = "spacegen/nodeset/v1"
	DomainSource  = "spacegen/source/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest computes the content-addressed digest of a NodeSet over its
// canonical JSON form. Two NodeSets built from permuted input have the
// same digest; any semantic change produces a different one.
func Digest(s *NodeSet) (string, error) {
	canonical, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("Digest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainNodeSet, canonical), nil
}

// SourceDigest computes the digest of emitted source text. Recorded in the
// run ledger so drift between gate runs can be traced to a specific output.
func SourceDigest(src []byte) string {
	return hashWithDomain(DomainSource, src)
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when the NodeSet is known to be valid.
func MustDigest(s *NodeSet) string {
	d, err := Digest(s)
	if err != nil {
		panic(err)
	}
	return d
}
