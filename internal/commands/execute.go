package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Remove  func(TargetArgs) (Result, error)
	On      func(TargetArgs) (Result, error)
	Off     func(TargetArgs) (Result, error)
	Days    func(DaysArgs) (Result, error)
	Label   func(LabelArgs) (Result, error)
	Tone    func(ToneArgs) (Result, error)
	Vibrate func(VibrateArgs) (Result, error)
	Snooze  func(TargetArgs) (Result, error)
	Dismiss func(TargetArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeRemove, TypeOn, TypeOff, TypeSnooze, TypeDismiss:
		h := targetHandler(cmd.Type, handlers)
		if h == nil {
			return Result{}, missing(cmd.Type)
		}
		return h(*cmd.Target)
	case TypeDays:
		if handlers.Days == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Days(*cmd.Days)
	case TypeLabel:
		if handlers.Label == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Label(*cmd.Label)
	case TypeTone:
		if handlers.Tone == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Tone(*cmd.Tone)
	case TypeVibrate:
		if handlers.Vibrate == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Vibrate(*cmd.Vibrate)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func targetHandler(t Type, h Handlers) func(TargetArgs) (Result, error) {
	switch t {
	case TypeRemove:
		return h.Remove
	case TypeOn:
		return h.On
	case TypeOff:
		return h.Off
	case TypeSnooze:
		return h.Snooze
	case TypeDismiss:
		return h.Dismiss
	}
	return nil
}

func missing(t Type) *CommandError {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
