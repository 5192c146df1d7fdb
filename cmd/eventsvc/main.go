package main

import "github.com/webhookx-io/eventsvc/cmd"

func main() {
	cmd.Execute()
}
