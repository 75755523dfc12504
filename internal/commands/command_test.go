package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/clockd/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add 07:00 gym", TypeAdd},
		{"rm 3", TypeRemove},
		{"delete #3", TypeRemove},
		{"on 2", TypeOn},
		{"off 2", TypeOff},
		{"days 4 weekdays", TypeDays},
		{"label 4 Morning run", TypeLabel},
		{"tone 4 default", TypeTone},
		{"vibrate 4 on", TypeVibrate},
		{"snooze 4", TypeSnooze},
		{"/dismiss 4", TypeDismiss},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseArguments(t *testing.T) {
	cmd, err := Parse("add 6:45 wake up early")
	if err != nil {
		t.Fatalf("parse add: %v", err)
	}
	if cmd.Add.Hour != 6 || cmd.Add.Minute != 45 || cmd.Add.Label != "wake up early" {
		t.Fatalf("unexpected add args: %+v", cmd.Add)
	}

	cmd, err = Parse("days 9 mon, wed")
	if err != nil {
		t.Fatalf("parse days: %v", err)
	}
	if cmd.Days.ID != 9 || cmd.Days.Days != model.DayMaskOf(1, 3) {
		t.Fatalf("unexpected days args: %+v", cmd.Days)
	}

	cmd, err = Parse("tone 2 /home/me/My Tones/bell.wav")
	if err != nil {
		t.Fatalf("parse tone: %v", err)
	}
	if cmd.Tone.Path != "/home/me/My Tones/bell.wav" {
		t.Fatalf("unexpected tone path: %q", cmd.Tone.Path)
	}

	cmd, _ = Parse("tone 2 DEFAULT")
	if cmd.Tone.Path != "" {
		t.Fatalf("default tone should clear the path, got %q", cmd.Tone.Path)
	}

	cmd, _ = Parse("label 5")
	if cmd.Label.Text != "" {
		t.Fatalf("bare label should clear the label, got %q", cmd.Label.Text)
	}

	cmd, _ = Parse("vibrate 5 off")
	if cmd.Vibrate.On {
		t.Fatalf("expected vibrate off")
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{
		"add",
		"add 25:00",
		"rm",
		"rm abc",
		"on 0",
		"days 3",
		"days 3 funday",
		"tone 3",
		"vibrate 3 maybe",
		"snooze 1 2",
	} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("%q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseEmptyAndUnknown(t *testing.T) {
	var ce *CommandError
	if _, err := Parse("  / "); !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty input error, got %v", err)
	}
	if _, err := Parse("/unknown do x"); !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add 07:30 standup")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Hour != 7 || a.Minute != 30 || a.Label != "standup" {
				t.Fatalf("unexpected args: %+v", a)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteRoutesTargetCommands(t *testing.T) {
	var got []string
	rec := func(name string) func(TargetArgs) (Result, error) {
		return func(a TargetArgs) (Result, error) {
			if a.ID != 8 {
				t.Fatalf("%s: unexpected id %d", name, a.ID)
			}
			got = append(got, name)
			return Result{}, nil
		}
	}
	h := Handlers{Remove: rec("rm"), On: rec("on"), Off: rec("off"), Snooze: rec("snooze"), Dismiss: rec("dismiss")}
	for _, in := range []string{"rm 8", "on 8", "off 8", "snooze 8", "dismiss 8"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if _, err := Execute(cmd, h); err != nil {
			t.Fatalf("execute %q: %v", in, err)
		}
	}
	want := []string{"rm", "on", "off", "snooze", "dismiss"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected routing: %v", got)
		}
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("off 1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
