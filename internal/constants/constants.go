package constants

import "time"

const (
	// ScoreExpiration is how long cached scores survive after the last
	// reset before a load discards them.
	ScoreExpiration = 5 * 24 * time.Hour
)

const (
	GamesStorageKey  = "domino-tracker-games"
	ScoresStorageKey = "domino-tracker-scores"
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
)

const (
	PersistQueueSize = 16
	ShutdownTimeout  = 5 * time.Second
)

// PlayerPalette is the fixed color rotation assigned by seat order at game
// creation, overriding whatever color the caller picked.
var PlayerPalette = []string{
	"#53679E", // blue
	"#EA5455", // red
	"#28C76F", // green
	"#FFCB2B", // yellow
}
