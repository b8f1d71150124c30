package main

import "github.com/healthassist/whatsapp-gateway/cmd"

func main() {
	cmd.Execute()
}
