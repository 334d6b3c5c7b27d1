package main

import "pdfchat/internal/cli"

func main() {
	cli.Execute()
}
