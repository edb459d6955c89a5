package main

import "github.com/khanhnv2901/fdscan/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
