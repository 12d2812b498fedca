package main

import "github.com/MeKo-Tech/ocrqa/cmd/ocrqa/cmd"

func main() {
	cmd.Execute()
}
