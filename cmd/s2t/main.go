package main

import (
	"speech-whisper/cmd/s2t/cmd"
)

func main() {
	cmd.Execute()
}
