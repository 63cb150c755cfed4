package config_test

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/internal/config"
)

func TestLoadDerivesServiceAddr(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privHex := hex.EncodeToString(crypto.FromECDSA(key))

	doc := fmt.Sprintf(`nodeInfo:
  fqdn: registry.example.com
  privatekey: %s
  admin: spc1adminadminadminadminadminadminadminadm
server:
  listen: ":8000"
  postgresDsn: "host=db user=postgres"
  redisAddr: "redis:6379"
  memcachedAddr: "memcached:11211"
  enableTrace: true
  traceEndpoint: "otel-collector:4318"
registry:
  mintFee: 42
  beneficiary: spc1beneficiary
  subSpaceLimit: 5
`, privHex)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	conf, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if conf.NodeInfo.FQDN != "registry.example.com" {
		t.Fatalf("unexpected fqdn %q", conf.NodeInfo.FQDN)
	}
	if !spaceport.IsAddress(conf.NodeInfo.ServiceAddr) {
		t.Fatalf("service address %q is not a principal address", conf.NodeInfo.ServiceAddr)
	}
	if conf.Server.Listen != ":8000" || !conf.Server.EnableTrace {
		t.Fatalf("server section did not parse: %+v", conf.Server)
	}
	if conf.Registry.MintFee != 42 || conf.Registry.SubSpaceLimit != 5 {
		t.Fatalf("registry section did not parse: %+v", conf.Registry)
	}

	dcfg := conf.Domain()
	if dcfg.ServiceAddr != conf.NodeInfo.ServiceAddr || dcfg.FQDN != conf.NodeInfo.FQDN {
		t.Fatalf("domain projection mismatch: %+v", dcfg)
	}
}

func TestLoadRejectsBadKey(t *testing.T) {
	doc := `nodeInfo:
  fqdn: registry.example.com
  privatekey: not-a-key
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Fatalf("expected load to fail on malformed private key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected load to fail on missing file")
	}
}
