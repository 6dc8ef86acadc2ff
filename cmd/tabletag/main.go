package main

import (
	"github.com/mcoot/tabletag-go/internal/cli"
)

func main() {
	cli.Execute()
}
