package ometiff

import (
	"crypto/rand"
	"fmt"
)

// newRandomUUID generates an RFC 4122 version-4 UUID the way the
// original writer's boost::uuids::random_generator does: 122 random bits
// plus the fixed version/variant bits. No third-party UUID library
// appears anywhere in the example pack, so this is built on crypto/rand,
// the smallest piece of stdlib that can source cryptographically random
// bytes.
func newRandomUUID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err) // crypto/rand.Read only fails if the OS entropy source is broken
	}
	b[6] = (b[6] & 0x0F) | 0x40 // version 4
	b[8] = (b[8] & 0x3F) | 0x80 // variant 10
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
