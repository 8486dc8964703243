package globals

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tkrajina/go-elevations/geoelevations"
	"gopkg.in/natefinch/lumberjack.v2"
)

var SrtmClient *geoelevations.Srtm

const VERSION = "v0.1.0"

const DEFAULT_NAME = "where-points"

// DEFAULT_SPEED is the average speed used to derive trackpoint times, m/s (~15 km/h).
const DEFAULT_SPEED = 4.16

var DEFAULT_START = time.Date(2025, 7, 14, 8, 30, 51, 0, time.UTC)

var LOG, DEBUG bool

// Logger is replaced by SetupLogger in main. The zero configuration only reports warnings and errors.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// SetupLogger configures Logger from the LOG / DEBUG flags. When fpath is set the log is written as
// JSON to a rotating file instead of stderr.
func SetupLogger(fpath string) io.Closer {
	lvl := slog.LevelWarn
	if LOG {
		lvl = slog.LevelInfo
	}
	if DEBUG {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if fpath == "" {
		Logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		return io.NopCloser(nil)
	}
	w := &lumberjack.Logger{
		Filename:   fpath,
		MaxSize:    32, // MB
		MaxBackups: 1,
	}
	Logger = slog.New(slog.NewJSONHandler(w, opts))
	return w
}
