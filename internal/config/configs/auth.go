package configs

// Auth configures validation of the bearer tokens issued by the external
// identity provider. Tokens are HMAC-signed JWTs carrying the actor id and
// role claims every guarded transition needs.
type Auth struct {
	// Secret is the shared HMAC key used to verify token signatures.
	Secret string `env:"SECRET" envDefault:"dev-secret-change-me"`
}
