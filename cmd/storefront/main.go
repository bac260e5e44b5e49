package main

import "github.com/matthieukhl/axoshard/internal/cmd"

func main() {
	cmd.Execute()
}
