package log

import (
	"io"
	"os"
	"sync"
)

const (
	timestampFormat = "02/01/2006 15:04:05"
	spacer          = " | "
)

var (
	// mu guards the sublogger registry and output writer
	mu sync.RWMutex

	output     io.Writer = os.Stdout
	subLoggers           = map[string]*SubLogger{}

	// Global is the default sublogger for anything without a home
	Global *SubLogger
	// Engine covers the simulation loop and run management
	Engine *SubLogger
	// Portfolio covers position and risk management
	Portfolio *SubLogger
	// Optimizer covers walk-forward optimization
	Optimizer *SubLogger
	// Data covers market data loading
	Data *SubLogger
)

// Levels flags each log level on or off
type Levels struct {
	Debug bool
	Info  bool
	Warn  bool
	Error bool
}

// SubLogger is a named logging domain with its own level settings
type SubLogger struct {
	name   string
	levels Levels
}

func init() {
	Global = registerNewSubLogger("BACKTEST")
	Engine = registerNewSubLogger("ENGINE")
	Portfolio = registerNewSubLogger("PORTFOLIO")
	Optimizer = registerNewSubLogger("OPTIMIZER")
	Data = registerNewSubLogger("DATA")
}
