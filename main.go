package main

import "github.com/Norgate-AV/assetpipe/cmd"

func main() {
	cmd.Execute()
}
