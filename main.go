package main

import (
	"os"

	"github.com/wysehawk/casedesk/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
