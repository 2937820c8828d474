package main

import "loan-widget/cli"

func main() {
	cli.Execute()
}
