package spaceport

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

const (
	// AddressPrefix is the bech32 human-readable part of every principal.
	AddressPrefix = "spc"

	addressLen = 42 // hrp(3) + separator(1) + data(32) + checksum(6)
)

// GetHash returns the keccak256 digest used for both address derivation and
// request signing.
func GetHash(data []byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)
	return hash.Sum(nil)
}

// PubKeyToAddr derives the bech32 principal address for a secp256k1 public key.
func PubKeyToAddr(pub *ecdsa.PublicKey, prefix string) (string, error) {
	raw := crypto.FromECDSAPub(pub)
	if len(raw) == 0 {
		return "", fmt.Errorf("invalid public key")
	}
	digest := GetHash(raw[1:]) // drop the 0x04 uncompressed header
	return bech32.ConvertAndEncode(prefix, digest[12:])
}

// PrivKeyToAddr derives the principal address for a hex-encoded private key.
func PrivKeyToAddr(privHex string, prefix string) (string, error) {
	key, err := crypto.HexToECDSA(privHex)
	if err != nil {
		return "", err
	}
	return PubKeyToAddr(&key.PublicKey, prefix)
}

// IsAddress reports whether s is shaped like a principal address. It is a
// cheap structural check; DecodeAddress performs full validation.
func IsAddress(s string) bool {
	return len(s) == addressLen && s[:4] == AddressPrefix+"1" && !hasChar(s, '.')
}

// DecodeAddress validates s and returns the 20 raw address bytes.
func DecodeAddress(s string) ([]byte, error) {
	hrp, data, err := bech32.DecodeAndConvert(s)
	if err != nil {
		return nil, err
	}
	if hrp != AddressPrefix {
		return nil, fmt.Errorf("unexpected address prefix %s", hrp)
	}
	if len(data) != 20 {
		return nil, fmt.Errorf("unexpected address length %d", len(data))
	}
	return data, nil
}

// SignBytes signs data with a hex-encoded private key, returning a 65-byte
// recoverable signature.
func SignBytes(data []byte, privHex string) ([]byte, error) {
	key, err := crypto.HexToECDSA(privHex)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(GetHash(data), key)
}

// VerifySignature checks that sig over data was produced by the key behind
// address. Verification is recovery based: the signer's public key is
// recovered from the signature and re-derived into an address.
func VerifySignature(data []byte, sig []byte, address string) error {
	if len(sig) != 65 {
		return fmt.Errorf("invalid signature length %d", len(sig))
	}
	pub, err := crypto.SigToPub(GetHash(data), sig)
	if err != nil {
		return err
	}
	derived, err := PubKeyToAddr(pub, AddressPrefix)
	if err != nil {
		return err
	}
	if derived != address {
		return fmt.Errorf("signature does not match address")
	}
	return nil
}

func hasChar(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}
