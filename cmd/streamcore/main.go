package main

import "github.com/lbryio/streamcore/pkg/cmd/streamcore"

func main() {
	streamcore.Execute()
}
