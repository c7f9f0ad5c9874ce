package main

import (
	"github.com/OFFIS-RIT/textgraph/internal/server"
	"github.com/OFFIS-RIT/textgraph/internal/util"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
	"github.com/OFFIS-RIT/textgraph/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		Format: util.GetEnvString("LOG_FORMAT", "text"),
	})
	logger.Init(consoleLogger)

	server.Init()
}
