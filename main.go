// Package main is the entry point for the casetrack CLI.
package main

import (
	"github.com/jansen-zhang20/covid-dashy-personal/cmd"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/iocache"
	"go.uber.org/zap"
)

func main() {
	defer iocache.CloseCaching()
	defer func() { _ = zap.L().Sync() }()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Error starting CLI", err)
	}
}
