package main

import (
	"crypto/cipher"

	"go.dedis.ch/kyber/v4/util/random"
)

// payloadSource produces random block payloads.
type payloadSource struct {
	stream cipher.Stream
}

func newPayloadSource() payloadSource {
	return payloadSource{stream: random.New()}
}

// next returns size random bytes.
func (p payloadSource) next(size int) []byte {
	data := make([]byte, size)
	p.stream.XORKeyStream(data, data)
	return data
}
