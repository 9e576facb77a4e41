package main

import "github.com/ardanlabs/provenance/app/tooling/sctl/cmd"

func main() {
	cmd.Execute()
}
