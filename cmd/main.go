package main

import (
	"os"

	"temp_monitor/internal/commands"

	_ "temp_monitor/docs"
)

// @title                       temp_monitor API
// @version                     1.0
// @description                 Chart, settings and journal API of the two-probe temperature monitor.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
