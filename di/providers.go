package di

import (
	"roombook/infras/postgres"
	"roombook/internal/handlers/health"
)

func provideHealthHandler(status *health.Status, db *postgres.Connection) health.Handler {
	return health.New(status, db)
}
