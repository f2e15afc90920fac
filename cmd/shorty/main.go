package main

import "github.com/OpenTraceLab/OpenTraceShorts/cmd/shorty/cmd"

func main() {
	cmd.Execute()
}
