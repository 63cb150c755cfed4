package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/internal/domain"
)

type Config struct {
	NodeInfo NodeInfo `yaml:"nodeInfo"`
	Server   Server   `yaml:"server"`
	Registry Registry `yaml:"registry"`
}

type NodeInfo struct {
	FQDN       string `yaml:"fqdn"`
	PrivateKey string `yaml:"privatekey"`
	Admin      string `yaml:"admin"`

	// ---
	ServiceAddr string
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

// Registry seeds the admin-tunable settings on first boot.
type Registry struct {
	MintFee       uint64 `yaml:"mintFee"`
	Beneficiary   string `yaml:"beneficiary"`
	SubSpaceLimit uint64 `yaml:"subSpaceLimit"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	serviceAddr, err := spaceport.PrivKeyToAddr(config.NodeInfo.PrivateKey, spaceport.AddressPrefix)
	if err != nil {
		return Config{}, err
	}

	config.NodeInfo.ServiceAddr = serviceAddr

	return config, nil
}

// Domain projects the node identity for services and middleware.
func (c Config) Domain() domain.Config {
	return domain.Config{
		FQDN:        c.NodeInfo.FQDN,
		PrivateKey:  c.NodeInfo.PrivateKey,
		Admin:       c.NodeInfo.Admin,
		ServiceAddr: c.NodeInfo.ServiceAddr,
	}
}
