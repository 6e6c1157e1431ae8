package main

import "github.com/mvp-joe/dsindex/internal/cli"

func main() {
	cli.Execute()
}
