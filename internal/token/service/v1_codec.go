package service

import (
	"crypto/hmac"
	"crypto/sha256"

	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
)

// V1 layout: [version:1][key_id:4][payload][hmac_sha256(secret, header||payload):32]
const v1TagSize = sha256.Size

func encodeV1(header, plaintext []byte, key *keysDomain.EncryptionKey) []byte {
	out := make([]byte, 0, len(header)+len(plaintext)+v1TagSize)
	out = append(out, header...)
	out = append(out, plaintext...)
	return append(out, v1Tag(key.Secret, out)...)
}

func decodeV1(data []byte, key *keysDomain.EncryptionKey) ([]byte, bool) {
	if len(data) < headerSize+payloadFixedSize+v1TagSize {
		return nil, false
	}
	body := data[:len(data)-v1TagSize]
	tag := data[len(data)-v1TagSize:]
	if !hmac.Equal(tag, v1Tag(key.Secret, body)) {
		return nil, false
	}
	return body[headerSize:], true
}

func v1Tag(secret, msg []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(msg)
	return mac.Sum(nil)
}
