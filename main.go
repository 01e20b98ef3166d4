package main

import "github.com/sstent/garminnotion/cmd"

func main() {
	cmd.Execute()
}
