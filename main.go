package main

import (
	"example.com/foodbridge/services/donation/cmd"
)

func main() {
	cmd.Execute()
}
