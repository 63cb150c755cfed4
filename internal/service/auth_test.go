package service_test

import (
	"context"
	"encoding/hex"
	"strconv"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/service"
	"github.com/spacefns/spaceport/jwt"
)

const testFQDN = "registry.example.com"

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

func issueToken(t *testing.T, privHex string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.Create(claims, privHex)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return token
}

func TestAuthJwtAcceptsValidToken(t *testing.T) {
	privHex, addr := generateIdentity(t)
	auth := service.NewAuthService(domain.Config{FQDN: testFQDN})

	token := issueToken(t, privHex, jwt.Claims{
		Issuer:         addr,
		Subject:        "spaceport",
		Audience:       testFQDN,
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10),
	})

	result, err := auth.AuthJwt(context.Background(), token)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	if result.Address != addr {
		t.Fatalf("expected %s, got %s", addr, result.Address)
	}

	// second pass resolves from the token cache
	again, err := auth.AuthJwt(context.Background(), token)
	if err != nil {
		t.Fatalf("cached auth: %v", err)
	}
	if again.Address != addr {
		t.Fatalf("cached result mismatch: %s", again.Address)
	}
}

func TestAuthJwtRejectsWrongAudience(t *testing.T) {
	privHex, addr := generateIdentity(t)
	auth := service.NewAuthService(domain.Config{FQDN: testFQDN})

	token := issueToken(t, privHex, jwt.Claims{
		Issuer:         addr,
		Subject:        "spaceport",
		Audience:       "somewhere.else.example.com",
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10),
	})

	if _, err := auth.AuthJwt(context.Background(), token); err == nil {
		t.Fatalf("expected audience mismatch to be rejected")
	}
}

func TestAuthJwtRejectsWrongSubject(t *testing.T) {
	privHex, addr := generateIdentity(t)
	auth := service.NewAuthService(domain.Config{FQDN: testFQDN})

	token := issueToken(t, privHex, jwt.Claims{
		Issuer:         addr,
		Subject:        "somethingelse",
		Audience:       testFQDN,
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10),
	})

	if _, err := auth.AuthJwt(context.Background(), token); err == nil {
		t.Fatalf("expected subject mismatch to be rejected")
	}
}

func TestAuthJwtRejectsGarbage(t *testing.T) {
	auth := service.NewAuthService(domain.Config{FQDN: testFQDN})

	if _, err := auth.AuthJwt(context.Background(), "definitely.not.ajwt"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}
