package main

import (
	"os"
	"roombook/config"
	"roombook/helper"
	"roombook/shared/logger"
	"strconv"

	"github.com/rs/zerolog/log"
)

const usage = "usage: migrate up|down|drop|step-up|version|force <version>"

func main() {
	if len(os.Args) < 2 { //nolint:mnd
		log.Fatal().Msg(usage)
	}

	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	var err error

	switch action := os.Args[1]; action {
	case "force":
		if len(os.Args) < 3 { //nolint:mnd
			log.Fatal().Msg(usage)
		}

		version, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			log.Fatal().Err(convErr).Msg("version must be a number")
		}

		err = helper.Force(cfg, version)
	default:
		err = helper.Runner(cfg, action)
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
