package main

import "github.com/cmmoran/bindgen/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
