package main

import "user-fixture-service/cmd/api/cli"

func main() {
	cli.Execute()
}
