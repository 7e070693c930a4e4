package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"slate/internal/app"
	"slate/internal/store"
	"slate/internal/ui"
	"slate/pkg/slate"
)

func main() {
	path := flag.String("board", "board.slate", "path to the board file")
	password := flag.String("password", "", "password for an encrypted board file")
	compress := flag.Bool("compress", true, "compress the board file on save")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	project, err := store.Open(*path, *password, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slate: %v\n", err)
		os.Exit(1)
	}

	opts := slate.SaveOptions{
		Compression: *compress,
		Encryption:  slate.EncryptionOptions{Enabled: *password != "", Password: *password},
	}
	deck := store.New(*path, opts, log)

	if err := app.New(project, deck, ui.Translations(nil), log).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "slate: %v\n", err)
		os.Exit(1)
	}
}
