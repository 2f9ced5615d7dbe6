package optimize

import "fmt"

// Level selects which repository variant the container wires for each
// logical service name. It is parsed once at startup and never changes for
// the process lifetime.
type Level int

const (
	// LevelBasic wires the plain stores, no caching, no instrumentation.
	LevelBasic Level = iota
	// LevelOptimized wires the optimized stores with query timing.
	LevelOptimized
	// LevelFull wires the optimized stores behind the tiered cache.
	LevelFull
)

// ParseLevel maps the OPTIMIZATION_LEVEL configuration value to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "basic":
		return LevelBasic, nil
	case "optimized":
		return LevelOptimized, nil
	case "full":
		return LevelFull, nil
	default:
		return LevelBasic, fmt.Errorf("unknown optimization level: %q", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelBasic:
		return "basic"
	case LevelOptimized:
		return "optimized"
	case LevelFull:
		return "full"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}
