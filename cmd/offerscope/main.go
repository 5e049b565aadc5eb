package main

import (
	"offerscope-backend/cmd/offerscope/cmd"
)

func main() {
	cmd.Execute()
}
