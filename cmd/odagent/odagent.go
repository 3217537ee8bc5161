package main

import (
	"os"

	"github.com/onedragon/odagent/internal/odagent"
	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := odagent.NewApp("odagent").Execute(); err != nil {
		os.Exit(1)
	}
}
