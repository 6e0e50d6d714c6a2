package input

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		want    Kind
		wantErr bool
	}{
		{"click", KindClick, false},
		{"TAP", KindClick, false},
		{" pause ", KindPause, false},
		{"blur", KindPause, false},
		{"focus", KindResume, false},
		{"toggle_pause", KindTogglePause, false},
		{"debug", KindToggleDebug, false},
		{"cheat", KindCheat, false},
		{"explode", KindUnknown, true},
		{"", KindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownAction) {
					t.Fatalf("ParseKind(%q) error = %v, want ErrUnknownAction", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q): %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestKindStringRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindClick, KindPause, KindResume, KindTogglePause, KindToggleDebug, KindCheat} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %s, %v", k.String(), got, err)
		}
	}
}

func TestSendStampsAndDispatches(t *testing.T) {
	var got Action
	d := DispatcherFunc(func(a Action) error {
		got = a
		return nil
	})

	if err := Send(d, Click(3, 4, ""), "desktop"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Kind != KindClick || got.X != 3 || got.Y != 4 {
		t.Errorf("dispatched %+v", got)
	}
	if got.Source != "desktop" {
		t.Errorf("source = %q, want desktop", got.Source)
	}
	if got.ReceivedAt.IsZero() {
		t.Error("receive time not stamped")
	}
}

func TestSendLogsRefusal(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	d := DispatcherFunc(func(Action) error { return ErrUnknownAction })

	err := Send(d, Action{Kind: KindCheat}, "terminal")
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("err = %v, want ErrUnknownAction", err)
	}
	if out := buf.String(); !strings.Contains(out, "⚠️") || !strings.Contains(out, "terminal") {
		t.Errorf("log output = %q", out)
	}
}
