package main

import "github.com/tempusbreve/gce-metadata/cmd"

func main() {
	cmd.Execute()
}
