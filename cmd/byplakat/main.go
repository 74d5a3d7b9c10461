package main

import (
	"os"

	"fjord.fyi/byplakat/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
