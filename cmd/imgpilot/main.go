package main

import "github.com/ErickHdzV/ImgPilot/internal/cli"

func main() {
	cli.Execute()
}
