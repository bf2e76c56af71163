package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	youtubeppt "github.com/sandudorogan/youtube-ppt/apps/youtubeppt/cmd"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	os.Exit(youtubeppt.Execute())
}
