package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/clockd/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeRemove  Type = "rm"
	TypeOn      Type = "on"
	TypeOff     Type = "off"
	TypeDays    Type = "days"
	TypeLabel   Type = "label"
	TypeTone    Type = "tone"
	TypeVibrate Type = "vibrate"
	TypeSnooze  Type = "snooze"
	TypeDismiss Type = "dismiss"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Hour   int
	Minute int
	Label  string
}

// TargetArgs names the alarm an id-only command acts on.
type TargetArgs struct {
	ID int64
}

type DaysArgs struct {
	ID   int64
	Days model.DayMask
}

type LabelArgs struct {
	ID   int64
	Text string
}

// ToneArgs carries the new tone path; an empty Path restores the default.
type ToneArgs struct {
	ID   int64
	Path string
}

type VibrateArgs struct {
	ID int64
	On bool
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	Target  *TargetArgs
	Days    *DaysArgs
	Label   *LabelArgs
	Tone    *ToneArgs
	Vibrate *VibrateArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeRemove, "delete", "del":
		return parseTarget(input, TypeRemove, args)
	case TypeOn, TypeOff, TypeSnooze, TypeDismiss:
		return parseTarget(input, Type(head), args)
	case TypeDays:
		return parseDays(input, args)
	case TypeLabel:
		return parseLabel(input, args)
	case TypeTone:
		return parseTone(input, args)
	case TypeVibrate:
		return parseVibrate(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("add requires a time (HH:MM)")
	}
	hour, minute, err := model.ParseClock(args[0])
	if err != nil {
		return Command{}, invalid(err.Error())
	}
	label := strings.TrimSpace(strings.Join(args[1:], " "))
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Hour: hour, Minute: minute, Label: label}}, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid(fmt.Sprintf("%s requires an alarm id", typ))
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{ID: id}}, nil
}

func parseDays(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("days requires an alarm id and a day list")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	mask, err := model.ParseDaySpec(strings.Join(args[1:], ""))
	if err != nil {
		return Command{}, invalid(err.Error())
	}
	return Command{Type: TypeDays, Raw: raw, Days: &DaysArgs{ID: id, Days: mask}}, nil
}

func parseLabel(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("label requires an alarm id")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeLabel, Raw: raw, Label: &LabelArgs{ID: id, Text: strings.Join(args[1:], " ")}}, nil
}

func parseTone(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("tone requires an alarm id and a path or \"default\"")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	path := strings.Join(args[1:], " ")
	if strings.EqualFold(path, "default") {
		path = ""
	}
	return Command{Type: TypeTone, Raw: raw, Tone: &ToneArgs{ID: id, Path: path}}, nil
}

func parseVibrate(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("vibrate requires an alarm id and on|off")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	var on bool
	switch strings.ToLower(args[1]) {
	case "on", "true", "yes", "1":
		on = true
	case "off", "false", "no", "0":
		on = false
	default:
		return Command{}, invalid(fmt.Sprintf("vibrate expects on|off, got %q", args[1]))
	}
	return Command{Type: TypeVibrate, Raw: raw, Vibrate: &VibrateArgs{ID: id, On: on}}, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid(fmt.Sprintf("invalid alarm id %q", raw))
	}
	return id, nil
}

func invalid(msg string) *CommandError {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: msg}
}
