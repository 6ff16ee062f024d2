package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
)

// AESGCMEncrypt encrypts data by AES in GCM mode with random nonce header
// `data` can be bytes in any length
// `key` should be a slice with length 16 / 24 / 32
// Result = (Nonce [12] byte + EncryptedData [] byte + Tag [16] byte)
func AESGCMEncrypt(data, key []byte) ([]byte, error) {
	crypter, err := newGCM(key)
	if err != nil {
		return nil, errors.Wrap(err, "aes_encrypt_new_cipher_failed")
	}
	nonceSize := crypter.NonceSize()
	buffer := make([]byte, nonceSize, nonceSize+len(data)+crypter.Overhead())
	if _, err = io.ReadFull(rand.Reader, buffer); err != nil {
		return nil, errors.Wrap(err, "aes_encrypt_nonce_failed")
	}
	return crypter.Seal(buffer, buffer, data, nil), nil
}

// AESGCMDecrypt decrypts data encrypted by AESGCMEncrypt
// Return errors if the data can not be decrypted or can not pass integrity verification
func AESGCMDecrypt(data, key []byte) ([]byte, error) {
	crypter, err := newGCM(key)
	if err != nil {
		return nil, errors.Wrap(err, "aes_decrypt_new_cipher_failed")
	}
	nonceSize := crypter.NonceSize()
	if len(data) < nonceSize+crypter.Overhead() {
		return nil, errors.New("aes_decrypt_data_too_short")
	}
	plain, err := crypter.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, errors.Wrap(err, "aes_decrypt_open_failed")
	}
	return plain, nil
}

// EncryptString encrypts text with a key derived from secret, encoded as std base64
func EncryptString(text, secret string) (string, error) {
	buf, err := AESGCMEncrypt([]byte(text), DeriveKey(secret))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// DecryptString reverses EncryptString
func DecryptString(encoded, secret string) (string, error) {
	buf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(err, "aes_decrypt_base64_failed")
	}
	plain, err := AESGCMDecrypt(buf, DeriveKey(secret))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
