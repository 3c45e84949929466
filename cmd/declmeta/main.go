package main

import "github.com/mvp-joe/declmeta/internal/cli"

func main() {
	cli.Execute()
}
