// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dirupload serves a directory over HTTP, and accepts uploads into it.
//
// For example, this is how you'd serve /var/tmp on port 9000 of localhost:
//
//	dirupload --bind 127.0.0.1 --directory /var/tmp 9000
//
// Every listing has an extra entry that leads to a form for uploads.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	upload "blitznote.com/src/http.dirupload"
)

// How long running requests get to finish after an interrupt.
const shutdownGracePeriod = 5 * time.Second

func main() {
	s, err := parseArgs(os.Args[1:])
	switch {
	case err == pflag.ErrHelp:
		os.Exit(0)
	case err != nil:
		logrus.Fatal(err)
	}

	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.SetLevel(level)

	h, err := upload.NewHandler(&s.Configuration, nil)
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, s, newRouter(h, logrus.StandardLogger())); err != nil {
		logrus.Fatal(err)
	}
}

func newRouter(h http.Handler, logger logrus.FieldLogger) *mux.Router {
	router := mux.NewRouter()
	router.SkipClean(true) // the handler cleans paths where it needs to
	router.Use(upload.AccessLog(logger))
	router.PathPrefix("/").Handler(h)
	return router
}

// run serves until 'ctx' is done.
func run(ctx context.Context, s *settings, handler http.Handler) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.Bind, strconv.Itoa(s.Port)))
	if err != nil {
		return err
	}
	if err := upload.Confine(s.Directory, s.WriteToPath); err != nil {
		ln.Close()
		return errors.Wrap(err, "cannot confine the process")
	}

	errorLog := logrus.StandardLogger().WriterLevel(logrus.ErrorLevel)
	defer errorLog.Close()
	srv := &http.Server{
		Handler:  handler,
		ErrorLog: log.New(errorLog, "", 0),
	}

	host, port := s.Bind, ln.Addr().(*net.TCPAddr).Port
	if host == "" {
		host = "0.0.0.0"
	}
	fmt.Printf("Serving HTTP on %s port %d (http://%s/) ...\n",
		host, port, net.JoinHostPort(host, strconv.Itoa(port)))
	logrus.WithFields(logrus.Fields{
		"directory": s.Directory,
		"write_to":  s.WriteToPath,
	}).Info("serving")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	fmt.Println("\nInterrupt received, exiting.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
