package main

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

var defaultLogFormatter = &log.TextFormatter{}

// infoFormatter prints Info() events as bare messages and everything else
// with the default text formatter.
type infoFormatter struct{}

func (f *infoFormatter) Format(entry *log.Entry) ([]byte, error) {
	if entry.Level == log.InfoLevel {
		return append([]byte(entry.Message), '\n'), nil
	}
	return defaultLogFormatter.Format(entry)
}

func setupLogging(quiet, verbose bool, level string) error {
	if quiet && verbose {
		return errors.New("can't set quiet and verbose flag at the same time")
	}
	log.SetFormatter(new(infoFormatter))
	log.SetLevel(log.InfoLevel)
	if level == "" {
		return nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	if lvl >= log.DebugLevel {
		log.SetFormatter(defaultLogFormatter)
	}
	log.SetLevel(lvl)
	return nil
}
