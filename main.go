// main is the entry point of the dtreport CLI.
package main

import (
	"github.com/elomagic/dtreport/cmd"
	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/internal/iocache"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; flags, config file and environment still apply.
	_ = godotenv.Load(".env")

	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	iocache.CloseCaching()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("could not stop profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("dtreport", err)
	}
}
