package spaceport

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func generateKeyHex(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return hex.EncodeToString(crypto.FromECDSA(key))
}

func TestPrivKeyToAddr(t *testing.T) {
	privHex := generateKeyHex(t)

	addr, err := PrivKeyToAddr(privHex, AddressPrefix)
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}

	if !IsAddress(addr) {
		t.Fatalf("derived address %q fails IsAddress", addr)
	}

	again, err := PrivKeyToAddr(privHex, AddressPrefix)
	if err != nil {
		t.Fatalf("derive address twice: %v", err)
	}
	if addr != again {
		t.Fatalf("derivation is not deterministic: %s vs %s", addr, again)
	}

	raw, err := DecodeAddress(addr)
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if len(raw) != 20 {
		t.Fatalf("expected 20 address bytes, got %d", len(raw))
	}
}

func TestIsAddressRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"spc1short",
		"con1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq",
		"spc1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq.qqqqq",
	}
	for _, c := range cases {
		if IsAddress(c) {
			t.Fatalf("expected %q to be rejected", c)
		}
	}
}

func TestSignAndVerify(t *testing.T) {
	privHex := generateKeyHex(t)
	addr, err := PrivKeyToAddr(privHex, AddressPrefix)
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}

	msg := []byte("spaceport test payload")
	sig, err := SignBytes(msg, privHex)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("expected 65 byte signature, got %d", len(sig))
	}

	if err := VerifySignature(msg, sig, addr); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := VerifySignature([]byte("tampered payload"), sig, addr); err == nil {
		t.Fatalf("expected verification failure for tampered payload")
	}

	otherAddr, err := PrivKeyToAddr(generateKeyHex(t), AddressPrefix)
	if err != nil {
		t.Fatalf("derive other address: %v", err)
	}
	if err := VerifySignature(msg, sig, otherAddr); err == nil {
		t.Fatalf("expected verification failure for wrong address")
	}
}
