package agent

import (
	"encoding/base32"
	"fmt"
	"hash/crc32"
	"strings"
)

// Principal identifies a canister or a user on the Internet Computer.
// The zero value is the anonymous principal.
type Principal struct {
	raw []byte
}

var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// anonymousSuffix is the single-byte payload of the anonymous principal.
const anonymousSuffix = 0x04

// AnonymousPrincipal is the identity used for unauthenticated queries.
var AnonymousPrincipal = Principal{raw: []byte{anonymousSuffix}}

// PrincipalFromText parses the dashed base32 textual form, verifying the
// CRC-32 checksum prefix.
func PrincipalFromText(text string) (Principal, error) {
	cleaned := strings.ToLower(strings.ReplaceAll(text, "-", ""))

	decoded, err := principalEncoding.DecodeString(strings.ToUpper(cleaned))
	if err != nil {
		return Principal{}, fmt.Errorf("agent: malformed principal %q: %w", text, err)
	}
	if len(decoded) < 5 {
		return Principal{}, fmt.Errorf("agent: principal %q too short", text)
	}

	payload := decoded[4:]
	sum := crc32.ChecksumIEEE(payload)
	expected := uint32(decoded[0])<<24 | uint32(decoded[1])<<16 | uint32(decoded[2])<<8 | uint32(decoded[3])
	if sum != expected {
		return Principal{}, fmt.Errorf("agent: principal %q checksum mismatch", text)
	}

	return Principal{raw: payload}, nil
}

// MustPrincipal parses text and panics on error. For constants and tests.
func MustPrincipal(text string) Principal {
	p, err := PrincipalFromText(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Text returns the canonical dashed base32 form.
func (p Principal) Text() string {
	raw := p.raw
	if len(raw) == 0 {
		raw = []byte{anonymousSuffix}
	}

	sum := crc32.ChecksumIEEE(raw)
	buf := make([]byte, 0, len(raw)+4)
	buf = append(buf, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))
	buf = append(buf, raw...)

	encoded := strings.ToLower(principalEncoding.EncodeToString(buf))

	var sb strings.Builder
	for i, r := range encoded {
		if i > 0 && i%5 == 0 {
			sb.WriteByte('-')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (p Principal) String() string {
	return p.Text()
}

// Bytes returns a copy of the raw principal bytes.
func (p Principal) Bytes() []byte {
	out := make([]byte, len(p.raw))
	copy(out, p.raw)
	return out
}

// IsAnonymous reports whether this is the anonymous principal.
func (p Principal) IsAnonymous() bool {
	return len(p.raw) == 0 || (len(p.raw) == 1 && p.raw[0] == anonymousSuffix)
}

// Equals reports raw-byte equality.
func (p Principal) Equals(other Principal) bool {
	return string(p.raw) == string(other.raw)
}

// Subaccount derives the 32-byte ICRC-1 subaccount owned by this principal
// inside another canister's accounting: length prefix, principal bytes,
// zero padding.
func (p Principal) Subaccount() [32]byte {
	var sub [32]byte
	sub[0] = byte(len(p.raw))
	copy(sub[1:], p.raw)
	return sub
}
