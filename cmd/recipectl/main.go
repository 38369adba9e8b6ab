package main

import "github.com/recipebox/recipebox/internal/cli"

func main() {
	cli.Execute()
}
