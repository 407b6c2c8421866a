// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	upload "blitznote.com/src/http.dirupload"
)

const defaultPort = 8000

var errTooManyArgs = errors.New("expected at most one argument, the port")

// settings is what a YAML file can hold. Flags given on the command line take precedence.
type settings struct {
	Bind     string `yaml:"bind"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	upload.Configuration `yaml:",inline"`
}

func defaultSettings() *settings {
	return &settings{
		Port:          defaultPort,
		LogLevel:      "info",
		Configuration: *upload.NewDefaultConfiguration(""),
	}
}

// loadFile overwrites settings with what the file at 'path' has.
func (s *settings) loadFile(path string) error {
	fd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fd.Close()

	dec := yaml.NewDecoder(fd)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && err != io.EOF { // EOF: the file is empty
		return errors.Wrapf(err, "cannot parse %s", path)
	}
	return nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid port %q", s)
	}
	return int(port), nil
}

// parseArgs reads the command line, and the settings file if one has been named.
func parseArgs(args []string) (*settings, error) {
	flags := pflag.NewFlagSet("dirupload", pflag.ContinueOnError)
	flags.SortFlags = false

	var (
		configFile = flags.StringP("config", "c", "", "YAML file with settings")
		bind       = flags.StringP("bind", "b", "", "Bind address [default: all interfaces]")
		directory  = flags.StringP("directory", "d", "", "Directory to list [default: current directory]")
		writeTo    = flags.String("write-to", "", "Directory to write uploads to [default: --directory]")
		single     = flags.Bool("single-file", false, "The upload form takes one file at a time")
		maxSize    = flags.Uint64("max-filesize", 0, "Reject uploads larger than this many bytes [default: no limit]")
		strict     = flags.Bool("strict-filenames", false, "Reject filenames with path separators or unusual characters")
		form       = flags.String("filenames-form", "", "With --strict-filenames: Unicode normal form, one of NFC, NFD, none")
		in         = flags.String("filenames-in", "", "With --strict-filenames: acceptable Unicode ranges, like 'x0020-x007e'")
		logLevel   = flags.String("log-level", "info", "One of: debug, info, warn, error")
	)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	s := defaultSettings()
	if *configFile != "" {
		if err := s.loadFile(*configFile); err != nil {
			return nil, err
		}
	}

	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "bind":
			s.Bind = *bind
		case "directory":
			s.Directory = *directory
		case "write-to":
			s.WriteToPath = *writeTo
		case "single-file":
			s.MultipleFiles = !*single
		case "max-filesize":
			s.MaxFilesize = *maxSize
		case "strict-filenames":
			s.StrictFilenames = *strict
		case "filenames-form":
			s.FilenamesForm = *form
		case "filenames-in":
			s.FilenamesIn = *in
		case "log-level":
			s.LogLevel = *logLevel
		}
	})

	switch flags.NArg() {
	case 0:
	case 1:
		port, err := parsePort(flags.Arg(0))
		if err != nil {
			return nil, err
		}
		s.Port = port
	default:
		return nil, errTooManyArgs
	}

	return s, nil
}
