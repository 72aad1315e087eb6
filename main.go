package main

import (
	"os"

	"doc-search/app"
)

func main() {
	os.Exit(app.Run(os.Args))
}
