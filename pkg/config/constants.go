package config

// EnvPrefix scopes all envconfig lookups.
const EnvPrefix = "FRUITSTAND"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "FRUITSTAND_DB_DSN"
	EnvDBHost = "FRUITSTAND_DB_HOST"
	EnvDBUser = "FRUITSTAND_DB_USER"
	EnvDBName = "FRUITSTAND_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
