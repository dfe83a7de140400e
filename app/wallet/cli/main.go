package main

import "github.com/qoranet/qoranet/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
