package main

import "github.com/adsero/adsero-assistant/internal/cli"

func main() {
	cli.Execute()
}
