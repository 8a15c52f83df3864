package engine

import (
	"github.com/piwi3910/lazor/internal/logging"
	"github.com/rs/zerolog"
)

// engLog is the sub-logger for the engine package, tagged module=engine.
var engLog zerolog.Logger = logging.Module("engine")
