package game

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// FinalLevel is the number of levels in the default table.
const FinalLevel = 8

var (
	ErrNoLevels     = errors.New("level table is empty")
	ErrInvalidLevel = errors.New("invalid level")
)

// LevelSpec holds the constants for one level.
type LevelSpec struct {
	TargetNum   int    `toml:"target" json:"targetNum" msgpack:"targetNum"`
	NumCircles  int    `toml:"circles" json:"numCircles" msgpack:"numCircles"`
	FailMessage string `toml:"fail" json:"failMessage" msgpack:"failMessage"`
	WinMessage  string `toml:"win" json:"winMessage" msgpack:"winMessage"`
}

// DefaultLevels is the built-in level table.
var DefaultLevels = [FinalLevel]LevelSpec{
	{TargetNum: 1, NumCircles: 5, FailMessage: "Oh c'mon, this is easy!", WinMessage: "Great job!"},
	{TargetNum: 3, NumCircles: 10, FailMessage: "Really?", WinMessage: "You're getting the hang of it!"},
	{TargetNum: 5, NumCircles: 15, FailMessage: "You almost had it!", WinMessage: "Now it's for real!"},
	{TargetNum: 9, NumCircles: 20, FailMessage: "So close!", WinMessage: "Get ready for the next round!"},
	{TargetNum: 17, NumCircles: 25, FailMessage: "Having fun yet?", WinMessage: "Almost to the final level!"},
	{TargetNum: 23, NumCircles: 30, FailMessage: "Almost!", WinMessage: "Think you'll get a high score?"},
	{TargetNum: 27, NumCircles: 35, FailMessage: "Keep trying!", WinMessage: "Here comes the final level!"},
	{TargetNum: 35, NumCircles: 40, FailMessage: "Screw it, click everywhere!", WinMessage: "You did it! It's over!"},
}

// Levels returns a copy of the default table.
func Levels() []LevelSpec {
	levels := make([]LevelSpec, len(DefaultLevels))
	copy(levels, DefaultLevels[:])
	return levels
}

type levelFile struct {
	Level []LevelSpec `toml:"level"`
}

// LoadLevels reads a level table from a TOML file of [[level]] entries.
func LoadLevels(path string) ([]LevelSpec, error) {
	var f levelFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode levels %s: %w", path, err)
	}
	if err := ValidateLevels(f.Level); err != nil {
		return nil, fmt.Errorf("levels %s: %w", path, err)
	}
	return f.Level, nil
}

// ValidateLevels checks that every level can actually be won.
func ValidateLevels(levels []LevelSpec) error {
	if len(levels) == 0 {
		return ErrNoLevels
	}
	for i, l := range levels {
		switch {
		case l.NumCircles < 1:
			return fmt.Errorf("%w: level %d has %d circles", ErrInvalidLevel, i, l.NumCircles)
		case l.TargetNum < 0:
			return fmt.Errorf("%w: level %d has negative target", ErrInvalidLevel, i)
		case l.TargetNum > l.NumCircles:
			return fmt.Errorf("%w: level %d target %d exceeds %d circles", ErrInvalidLevel, i, l.TargetNum, l.NumCircles)
		}
	}
	return nil
}
