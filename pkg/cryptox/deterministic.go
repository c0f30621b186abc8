package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Wire format of deterministic ciphertexts:
//
//	"a2" | mode (1 byte) | count (uint16 LE) | AES-128-CBC ciphertext | HMAC-SHA256[:16]
//
// The AES key is PBKDF2-HMAC-SHA256(secret, sha256(salt), count) and the IV is
// the first block of sha256(salt), so the same (secret, plaintext, salt)
// always yields the same output.
const (
	deterministicMagic      = "a2"
	deterministicModeAES128 = 1
	deterministicCount      = 1
	deterministicMaxCount   = 1
	deterministicKeySize    = 16
	deterministicMACSize    = 16
	deterministicHeaderSize = 5
)

// ErrDecryption is returned for any deterministic ciphertext that cannot be
// authenticated or decoded.
var ErrDecryption = errors.New("cryptox: decryption failed")

// DeterministicEncrypt encrypts and authenticates plaintext with secret,
// using salt as a domain separator, and returns unpadded base64url.
func DeterministicEncrypt(secret, plaintext []byte, salt string) (string, error) {
	if len(plaintext) > 0x7fff {
		return "", fmt.Errorf("cryptox: plaintext too long (%d bytes)", len(plaintext))
	}

	block, iv, err := deterministicCipher(secret, salt, deterministicCount)
	if err != nil {
		return "", err
	}

	padded := addLengthPadding(plaintext, deterministicKeySize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	raw := make([]byte, 0, deterministicHeaderSize+len(ct)+deterministicMACSize)
	raw = append(raw, deterministicMagic...)
	raw = append(raw, deterministicModeAES128)
	raw = binary.LittleEndian.AppendUint16(raw, deterministicCount)
	raw = append(raw, ct...)
	raw = append(raw, deterministicMAC(secret, ct)...)

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DeterministicDecrypt reverses DeterministicEncrypt. Every failure (bad
// encoding, header, MAC or padding) is reported as ErrDecryption.
func DeterministicDecrypt(secret []byte, encoded, salt string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrDecryption, err)
	}
	if len(raw) < deterministicHeaderSize {
		return nil, fmt.Errorf("%w: short header", ErrDecryption)
	}
	if string(raw[:2]) != deterministicMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrDecryption)
	}
	if raw[2] != deterministicModeAES128 {
		return nil, fmt.Errorf("%w: unknown mode %d", ErrDecryption, raw[2])
	}
	count := int(binary.LittleEndian.Uint16(raw[3:5]))
	if count < 1 || count > deterministicMaxCount {
		return nil, fmt.Errorf("%w: bad iteration count %d", ErrDecryption, count)
	}

	body := raw[deterministicHeaderSize:]
	if len(body) <= deterministicMACSize {
		return nil, fmt.Errorf("%w: missing ciphertext", ErrDecryption)
	}
	ct, mac := body[:len(body)-deterministicMACSize], body[len(body)-deterministicMACSize:]
	if !hmac.Equal(deterministicMAC(secret, ct), mac) {
		return nil, fmt.Errorf("%w: bad mac", ErrDecryption)
	}
	if len(ct)%deterministicKeySize != 0 {
		return nil, fmt.Errorf("%w: ciphertext not block aligned", ErrDecryption)
	}

	block, iv, err := deterministicCipher(secret, salt, count)
	if err != nil {
		return nil, err
	}
	padded := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ct)

	return removeLengthPadding(padded, deterministicKeySize)
}

func deterministicCipher(secret []byte, salt string, count int) (cipher.Block, []byte, error) {
	iv := sha256.Sum256([]byte(salt))
	key := pbkdf2.Key(secret, iv[:], count, deterministicKeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptox: aes: %w", err)
	}
	return block, iv[:deterministicKeySize], nil
}

func deterministicMAC(secret, ct []byte) []byte {
	m := hmac.New(sha256.New, secret)
	m.Write(ct)
	return m.Sum(nil)[:deterministicMACSize]
}

// addLengthPadding prefixes msg with its int16 little-endian length and
// zero-fills to a multiple of blockSize. An aligned message still gets a
// full block of padding.
func addLengthPadding(msg []byte, blockSize int) []byte {
	padLen := blockSize - (len(msg)+2)%blockSize
	out := make([]byte, 2, 2+len(msg)+padLen)
	binary.LittleEndian.PutUint16(out, uint16(len(msg))) // #nosec G115 - bounded by caller
	out = append(out, msg...)
	return append(out, make([]byte, padLen)...)
}

func removeLengthPadding(padded []byte, blockSize int) ([]byte, error) {
	if len(padded) < 2 || len(padded)%blockSize != 0 {
		return nil, fmt.Errorf("%w: bad padding", ErrDecryption)
	}
	n := int(int16(binary.LittleEndian.Uint16(padded[:2]))) // #nosec G115 - signed length prefix
	if n < 0 || n > len(padded)-2 {
		return nil, fmt.Errorf("%w: bad padding length", ErrDecryption)
	}
	if len(bytes.Trim(padded[2+n:], "\x00")) != 0 {
		return nil, fmt.Errorf("%w: padding is not all zero", ErrDecryption)
	}
	return padded[2 : 2+n], nil
}
