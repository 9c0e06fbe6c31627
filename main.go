package main

import "github.com/RyanBlaney/contest-audio-dataset/cmd"

func main() {
	cmd.Execute()
}
