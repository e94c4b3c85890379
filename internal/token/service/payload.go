package service

import (
	"encoding/binary"
	"errors"
	"math"
	"time"

	tokenDomain "github.com/allisson/uidoperator/internal/token/domain"
)

// Plaintext layout shared by both generations:
//
//	[kind:1][site_id:4][established_ms:8][expires_ms:8][privacy_bits:4][hash_len:2][hash]
const payloadFixedSize = 1 + 4 + 8 + 8 + 4 + 2

var errMalformedPayload = errors.New("malformed token payload")

func marshalPayload(kind tokenDomain.Kind, p *tokenDomain.Payload) ([]byte, error) {
	if !kind.Valid() {
		return nil, tokenDomain.ErrPayloadTooLarge
	}
	if p.SiteID < math.MinInt32 || p.SiteID > math.MaxInt32 || len(p.IdentityHash) > math.MaxUint16 {
		return nil, tokenDomain.ErrPayloadTooLarge
	}

	buf := make([]byte, payloadFixedSize+len(p.IdentityHash))
	buf[0] = byte(kind)
	binary.BigEndian.PutUint32(buf[1:5], uint32(int32(p.SiteID))) //nolint:gosec // range checked above
	binary.BigEndian.PutUint64(buf[5:13], uint64(p.EstablishedAt.UnixMilli()))
	binary.BigEndian.PutUint64(buf[13:21], uint64(p.ExpiresAt.UnixMilli()))
	binary.BigEndian.PutUint32(buf[21:25], p.PrivacyBits)
	binary.BigEndian.PutUint16(buf[25:27], uint16(len(p.IdentityHash))) //nolint:gosec // range checked above
	copy(buf[payloadFixedSize:], p.IdentityHash)
	return buf, nil
}

func unmarshalPayload(buf []byte) (tokenDomain.Kind, tokenDomain.Payload, error) {
	if len(buf) < payloadFixedSize {
		return 0, tokenDomain.Payload{}, errMalformedPayload
	}
	kind := tokenDomain.Kind(buf[0])
	if !kind.Valid() {
		return 0, tokenDomain.Payload{}, errMalformedPayload
	}
	hashLen := int(binary.BigEndian.Uint16(buf[25:27]))
	if len(buf) != payloadFixedSize+hashLen {
		return 0, tokenDomain.Payload{}, errMalformedPayload
	}

	hash := make([]byte, hashLen)
	copy(hash, buf[payloadFixedSize:])

	siteID := int32(binary.BigEndian.Uint32(buf[1:5]))         //nolint:gosec // two's complement on the wire
	establishedMs := int64(binary.BigEndian.Uint64(buf[5:13])) //nolint:gosec
	expiresMs := int64(binary.BigEndian.Uint64(buf[13:21]))    //nolint:gosec

	return kind, tokenDomain.Payload{
		IdentityHash:  hash,
		SiteID:        int64(siteID),
		EstablishedAt: time.UnixMilli(establishedMs).UTC(),
		ExpiresAt:     time.UnixMilli(expiresMs).UTC(),
		PrivacyBits:   binary.BigEndian.Uint32(buf[21:25]),
	}, nil
}
