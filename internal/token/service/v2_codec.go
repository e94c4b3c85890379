package service

import (
	cryptoDomain "github.com/allisson/uidoperator/internal/crypto/domain"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
)

// V2 layout: [version:1][key_id:4][nonce:12][ciphertext||tag]. The header is the AAD.
const v2MinSize = headerSize + cryptoDomain.NonceSize + payloadFixedSize + cryptoDomain.TagSize

func (c *Codec) encodeV2(header, plaintext []byte, key *keysDomain.EncryptionKey) ([]byte, error) {
	cipher, err := c.aeadManager.CreateCipher(key.Secret, key.Algorithm)
	if err != nil {
		return nil, err
	}
	ciphertext, nonce, err := cipher.Encrypt(plaintext, header)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(header)+len(nonce)+len(ciphertext))
	out = append(out, header...)
	out = append(out, nonce...)
	return append(out, ciphertext...), nil
}

func (c *Codec) decodeV2(data []byte, key *keysDomain.EncryptionKey) ([]byte, bool) {
	if len(data) < v2MinSize {
		return nil, false
	}
	cipher, err := c.aeadManager.CreateCipher(key.Secret, key.Algorithm)
	if err != nil {
		return nil, false
	}
	header := data[:headerSize]
	nonce := data[headerSize : headerSize+cryptoDomain.NonceSize]
	plaintext, err := cipher.Decrypt(data[headerSize+cryptoDomain.NonceSize:], nonce, header)
	if err != nil {
		return nil, false
	}
	return plaintext, true
}
