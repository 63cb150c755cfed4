package domain

// RegistrySettings is the mutable scalar configuration of the
// registry, administrator gated.
type RegistrySettings struct {
	MintFee       uint64
	Beneficiary   string
	SubSpaceLimit uint64
}
