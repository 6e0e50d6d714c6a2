package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeLevels(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "levels.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultLevelsAreValid(t *testing.T) {
	if err := ValidateLevels(Levels()); err != nil {
		t.Fatalf("default levels invalid: %v", err)
	}
	if len(Levels()) != FinalLevel {
		t.Errorf("len = %d, want %d", len(Levels()), FinalLevel)
	}
}

func TestLevelsReturnsCopy(t *testing.T) {
	l := Levels()
	l[0].TargetNum = 99
	if DefaultLevels[0].TargetNum != 1 {
		t.Error("Levels leaked the default table")
	}
}

func TestLoadLevels(t *testing.T) {
	path := writeLevels(t, `
[[level]]
target = 2
circles = 6
fail = "Nope"
win = "Yes"

[[level]]
target = 4
circles = 12
fail = "Again"
win = "Done"
`)

	levels, err := LoadLevels(path)
	if err != nil {
		t.Fatalf("LoadLevels: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("len = %d, want 2", len(levels))
	}
	want := LevelSpec{TargetNum: 4, NumCircles: 12, FailMessage: "Again", WinMessage: "Done"}
	if levels[1] != want {
		t.Errorf("levels[1] = %+v, want %+v", levels[1], want)
	}
}

func TestLoadLevelsRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty", ``, ErrNoLevels},
		{"target above circles", "[[level]]\ntarget = 6\ncircles = 5\n", ErrInvalidLevel},
		{"no circles", "[[level]]\ntarget = 0\ncircles = 0\n", ErrInvalidLevel},
		{"negative target", "[[level]]\ntarget = -1\ncircles = 5\n", ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLevels(writeLevels(t, tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadLevelsMissingFile(t *testing.T) {
	if _, err := LoadLevels(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSessionUsesCustomLevels(t *testing.T) {
	levels := []LevelSpec{{TargetNum: 1, NumCircles: 3, WinMessage: "ok"}}
	s := NewSession(SessionConfig{Bounds: testBounds, Levels: levels, Rand: newTestRand()})
	s.HandleClick(0, 0)

	if len(s.Circles()) != 3 {
		t.Errorf("circles = %d, want 3", len(s.Circles()))
	}

	s.state = StateRoundOver
	s.HandleClick(0, 0)
	if s.State() != StateEnd {
		t.Errorf("single-level game state = %s, want end", s.State())
	}
}
