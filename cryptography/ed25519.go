package cryptography

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// Default derivation path for faucet wallets: m/44'/7337'/0'/0'.
var DefaultBip44Path = []uint32{44, 7337, 0, 0}

// ASN.1 header of a PKIX-encoded ed25519 public key. The raw 32 bytes follow it.
var pkixEd25519Prefix = []byte{0x30, 0x2a, 0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70, 0x03, 0x21, 0x00}

type Ed25519Box struct {
	Mnemonic  string
	Bip44Path []uint32
	Pub, Prv  string // base58 raw public key, base64 PKCS#8 private key
}

// GenerateKeyPair derives an ed25519 key pair from a BIP-39 mnemonic along a hardened BIP-32
// path. An empty mnemonic generates a fresh 24-word one.
func GenerateKeyPair(mnemonic, mnemonicPassword string, bip44DerivePath []uint32) (Ed25519Box, error) {

	if mnemonic == "" {
		entropy, err := bip39.NewEntropy(256)
		if err != nil {
			return Ed25519Box{}, err
		}
		if mnemonic, err = bip39.NewMnemonic(entropy); err != nil {
			return Ed25519Box{}, err
		}
	}

	if !bip39.IsMnemonicValid(mnemonic) {
		return Ed25519Box{}, errors.New("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, mnemonicPassword)

	childKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return Ed25519Box{}, err
	}

	if len(bip44DerivePath) == 0 {
		bip44DerivePath = DefaultBip44Path
	}

	for _, pathPart := range bip44DerivePath {
		if childKey, err = childKey.NewChildKey(bip32.FirstHardenedChild + pathPart); err != nil {
			return Ed25519Box{}, fmt.Errorf("derive path %v: %w", bip44DerivePath, err)
		}
	}

	privateKey := ed25519.NewKeyFromSeed(childKey.Key)
	publicKey := privateKey.Public().(ed25519.PublicKey)

	privKeyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return Ed25519Box{}, err
	}

	return Ed25519Box{
		Mnemonic:  mnemonic,
		Bip44Path: bip44DerivePath,
		Pub:       base58.Encode(publicKey),
		Prv:       base64.StdEncoding.EncodeToString(privKeyBytes),
	}, nil
}

// ParsePrivateKey decodes a base64 PKCS#8 ed25519 private key.
func ParsePrivateKey(base64PrivateKey string) (ed25519.PrivateKey, error) {

	raw, err := base64.StdEncoding.DecodeString(base64PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("private key is not base64: %w", err)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("private key is not PKCS#8: %w", err)
	}

	privateKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not ed25519")
	}

	return privateKey, nil
}

// PublicKeyOf returns the base58 public key matching privateKey.
func PublicKeyOf(privateKey ed25519.PrivateKey) string {
	return base58.Encode(privateKey.Public().(ed25519.PublicKey))
}

func GenerateSignature(privateKey ed25519.PrivateKey, msg []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(privateKey, msg))
}

func VerifySignature(message []byte, base58PubKey, base64Signature string) bool {

	rawPubKey := base58.Decode(base58PubKey)
	if len(rawPubKey) != ed25519.PublicKeySize {
		return false
	}

	parsed, err := x509.ParsePKIXPublicKey(append(append([]byte{}, pkixEd25519Prefix...), rawPubKey...))
	if err != nil {
		return false
	}
	publicKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return false
	}

	signature, err := base64.StdEncoding.DecodeString(base64Signature)
	if err != nil {
		return false
	}

	return ed25519.Verify(publicKey, message, signature)
}

// IsValidPubKey reports whether s is a base58 encoded raw ed25519 public key (32 bytes).
func IsValidPubKey(s string) bool {
	return len(base58.Decode(s)) == ed25519.PublicKeySize
}
