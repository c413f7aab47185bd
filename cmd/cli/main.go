package main

import (
	"github.com/mchmarny/cardiocheck/pkg/cli"
)

func main() {
	cli.Execute()
}
