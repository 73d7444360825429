package faucet_pack

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/modulrcloud/modulr-api/cryptography"
)

type Signer interface {
	Sign(payload []byte) (string, error)
	PublicKey() string
}

// Ed25519Signer signs with the faucet wallet key. Signatures are base64.
type Ed25519Signer struct {
	privateKey ed25519.PrivateKey
	publicKey  string
}

// NewEd25519Signer loads a base64 PKCS#8 private key and checks it against the configured
// base58 public key.
func NewEd25519Signer(base64PrivateKey, base58PublicKey string) (*Ed25519Signer, error) {

	privateKey, err := cryptography.ParsePrivateKey(base64PrivateKey)
	if err != nil {
		return nil, err
	}

	derived := cryptography.PublicKeyOf(privateKey)
	if base58PublicKey != "" && derived != base58PublicKey {
		return nil, fmt.Errorf("faucet public key %s does not match the private key", base58PublicKey)
	}

	return &Ed25519Signer{privateKey: privateKey, publicKey: derived}, nil
}

func NewEd25519SignerFromMnemonic(mnemonic, password string, bip44Path []uint32) (*Ed25519Signer, error) {

	if mnemonic == "" {
		return nil, errors.New("empty mnemonic")
	}

	box, err := cryptography.GenerateKeyPair(mnemonic, password, bip44Path)
	if err != nil {
		return nil, err
	}

	return NewEd25519Signer(box.Prv, box.Pub)
}

func (s *Ed25519Signer) Sign(payload []byte) (string, error) {
	return cryptography.GenerateSignature(s.privateKey, payload), nil
}

func (s *Ed25519Signer) PublicKey() string {
	return s.publicKey
}
