package constants

const (
	SSM_PATH              = "/inventory"
	ALLOWED_ORIGINS       = "/inventory/ALLOWED_ORIGINS"
	DATABASE_DRIVER       = "/inventory/DATABASE_DRIVER"
	DATABASE_RDS_ENDPOINT = "/inventory/DATABASE_RDS_ENDPOINT"
	DATABASE_PORT         = "/inventory/DATABASE_PORT"
	DATABASE_NAME         = "/inventory/DATABASE_NAME"
	DATABASE_USERNAME     = "/inventory/DATABASE_USERNAME"
	DATABASE_PASSWORD     = "/inventory/DATABASE_PASSWORD"
	SSL_MODE              = "/inventory/SSL_MODE"
	SQLITE_PATH           = "/inventory/SQLITE_PATH"
	REDIS_ADDR            = "/inventory/REDIS_ADDR"
	BACKUP_OBJECT_KEY     = "/inventory/BACKUP_OBJECT_KEY"

	DRIVER_NAME        = "postgres"
	SQLITE_DRIVER_NAME = "sqlite"
	SQLITE_LOWER_FUNC  = "unicode_lower"

	DEFAULT_BACKUP_OBJECT_KEY = "inventory-backup.json"
	LOCALSTACK_ENDPOINT       = "http://docker.for.mac.host.internal:4566"
	AWS_REGION                = "us-east-2"
)
