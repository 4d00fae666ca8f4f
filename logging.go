package gsplat

import (
	"io"
	"os"

	"github.com/gekko3d/gsplat/splatrt/rt/core"
)

type Logger = core.Logger

// LoggingModule installs a default logger as a resource. With File set, all
// levels are appended to that file instead of stdout and stderr.
type LoggingModule struct {
	Prefix string
	Debug  bool
	File   string
}

type logSink struct {
	closer io.Closer
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	if m.File == "" {
		app.addResources(core.NewDefaultLogger(m.Prefix, m.Debug))
		return
	}

	f, err := os.OpenFile(m.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := core.NewDefaultLogger(m.Prefix, m.Debug)
		logger.Warnf("logging: cannot open %s, using stdout: %v", m.File, err)
		app.addResources(logger)
		return
	}
	app.addResources(core.NewWriterLogger(f, nil, m.Prefix, m.Debug), &logSink{closer: f})
	cmd.UseSystem(System(closeLogSinkSystem).InStage(Shutdown))
}

// Registered first, so LIFO shutdown closes the file after every other
// module has logged its teardown.
func closeLogSinkSystem(sink *logSink) {
	if sink.closer != nil {
		_ = sink.closer.Close()
		sink.closer = nil
	}
}

// Logger returns the first Logger resource if present, otherwise a no-op logger.
// Safe to call at any time; never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return core.NewNopLogger()
	}
	if l, ok := Resource[core.DefaultLogger](app); ok {
		return l
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return core.NewNopLogger()
}
