package config

// EnvPrefix namespaces every environment variable read by the service.
const EnvPrefix = "ridegear"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "RIDEGEAR_DB_DSN"
	EnvDBHost = "RIDEGEAR_DB_HOST"
	EnvDBUser = "RIDEGEAR_DB_USER"
	EnvDBName = "RIDEGEAR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
