package main

import (
	"io"
	"os"
	"time"

	markclip "github.com/alnah/go-markclip"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time and extra converter options.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	// ConverterOptions are appended to the options every converter is
	// built with.
	ConverterOptions []markclip.Option
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
