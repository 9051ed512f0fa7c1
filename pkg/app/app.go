// Package app wires together the simulator's config, logger, and
// session into a single runnable unit.
package app

import (
	"io"
	"strings"

	"github.com/nkamau/osched/pkg/config"
	"github.com/nkamau/osched/pkg/log"
	"github.com/nkamau/osched/pkg/session"
	"github.com/sirupsen/logrus"
)

// App is the top-level wiring for one simulator process.
type App struct {
	closers []io.Closer

	Config  *config.AppConfig
	Log     *logrus.Entry
	Session *session.Session
}

// NewApp bootstraps a new application.
func NewApp(cfg *config.AppConfig) (*App, error) {
	app := &App{
		closers: []io.Closer{},
		Config:  cfg,
	}

	app.Log = log.NewLogger(cfg)
	app.Session = session.NewSession(app.Log)

	return app, nil
}

// Close closes any resources the app opened.
func (app *App) Close() error {
	for _, closer := range app.closers {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	app.Session.Close()
	return nil
}

type errorMapping struct {
	originalError string
	newError      string
}

// KnownError takes an error and tells us whether it's an error that we
// know about where we can print a nicely formatted version of it
// rather than panicking with a stack trace.
func (app *App) KnownError(err error) (string, bool) {
	errorMessage := strings.ToLower(err.Error())

	mappings := []errorMapping{
		{
			originalError: "not initialized",
			newError:      "Session has not been configured yet; send an `init` message before `tick`/`run`.",
		},
		{
			originalError: "duplicate pid",
			newError:      "A process with that pid is already admitted or pending.",
		},
		{
			originalError: "invalid burst",
			newError:      "Burst sequence must alternate CPU/IO, have odd length, and contain only positive values.",
		},
	}

	for _, mapping := range mappings {
		if strings.Contains(errorMessage, mapping.originalError) {
			return mapping.newError, true
		}
	}

	return "", false
}
