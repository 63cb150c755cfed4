package jwt_test

import (
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/jwt"
)

func generateIdentity(t *testing.T) (string, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privHex := hex.EncodeToString(crypto.FromECDSA(key))
	addr, err := spaceport.PubKeyToAddr(&key.PublicKey, spaceport.AddressPrefix)
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}
	return privHex, addr
}

func TestCreateValidateRoundTrip(t *testing.T) {
	privHex, addr := generateIdentity(t)

	claims := jwt.Claims{
		Issuer:         addr,
		Subject:        "spaceport",
		Audience:       "registry.example.com",
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10),
	}

	token, err := jwt.Create(claims, privHex)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	header, got, err := jwt.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if header.Algorithm != "SPFN" {
		t.Fatalf("unexpected algorithm %q", header.Algorithm)
	}
	if got.Issuer != addr || got.Audience != claims.Audience || got.Subject != claims.Subject {
		t.Fatalf("claims did not round trip: %+v", got)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	privHex, addr := generateIdentity(t)

	claims := jwt.Claims{
		Issuer:         addr,
		Subject:        "spaceport",
		ExpirationTime: strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10),
	}

	token, err := jwt.Create(claims, privHex)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := jwt.Validate(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestValidateRejectsForeignIssuer(t *testing.T) {
	privHex, _ := generateIdentity(t)
	_, otherAddr := generateIdentity(t)

	claims := jwt.Claims{
		Issuer:         otherAddr,
		Subject:        "spaceport",
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10),
	}

	token, err := jwt.Create(claims, privHex)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := jwt.Validate(token); err == nil {
		t.Fatalf("expected issuer mismatch to be rejected")
	}
}

func TestValidateRejectsTamperedPayload(t *testing.T) {
	privHex, addr := generateIdentity(t)

	claims := jwt.Claims{
		Issuer:         addr,
		Subject:        "spaceport",
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10),
	}

	token, err := jwt.Create(claims, privHex)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	parts := strings.Split(token, ".")
	forged := jwt.Claims{
		Issuer:         addr,
		Subject:        "somebody-else",
		ExpirationTime: claims.ExpirationTime,
	}
	forgedToken, err := jwt.Create(forged, privHex)
	if err != nil {
		t.Fatalf("create forged: %v", err)
	}
	forgedParts := strings.Split(forgedToken, ".")

	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]
	if _, _, err := jwt.Validate(spliced); err == nil {
		t.Fatalf("expected spliced token to be rejected")
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"only-one-part",
		"two.parts",
		"not!.base64.data",
	}
	for _, c := range cases {
		if _, _, err := jwt.Validate(c); err == nil {
			t.Fatalf("expected %q to be rejected", c)
		}
	}
}
