package main

import "github.com/roshansamuel/gpu-saras/cmd"

func main() {
	cmd.Execute()
}
