package handler

import (
	"net/http"
	"os"
	"sync"

	"roombook/config"
	"roombook/di"
	"roombook/shared/logger"
	transport "roombook/transport/http"
)

var (
	once    sync.Once
	service *transport.HTTP
)

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()
		logger.Configure(cfg, os.Stdout)

		service = di.InitializeService()
	})

	service.ServeHTTP(w, r)
}
