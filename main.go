package main

import "github.com/Lumos-Labs-HQ/factorygen/cmd"

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.ExitWithError(err)
	}
}
