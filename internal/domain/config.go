package domain

// Config is the node identity handed to services. ServiceAddr is derived from
// PrivateKey at load time and is the only principal the registry gates admit.
type Config struct {
	FQDN        string `yaml:"fqdn"`
	PrivateKey  string `yaml:"privatekey"`
	Admin       string `yaml:"admin"`
	ServiceAddr string `yaml:"serviceAddr"`
}
