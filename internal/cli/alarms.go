package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mitchellh/go-homedir"
	"github.com/sandeepkv93/clockd/internal/alarm"
	"github.com/sandeepkv93/clockd/internal/export"
	"github.com/sandeepkv93/clockd/internal/model"
	"github.com/spf13/cobra"
)

var (
	onColor  = color.New(color.FgGreen, color.Bold)
	offColor = color.New(color.Faint)
)

func addList(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alarms.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, app *App) error {
				alarms, err := app.Service.List(ctx)
				if err != nil {
					return err
				}
				printAlarms(cmd.OutOrStdout(), alarms, time.Now())
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func printAlarms(w io.Writer, alarms []model.Alarm, now time.Time) {
	if len(alarms) == 0 {
		fmt.Fprintln(w, "no alarms")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "TIME", "STATE", "DAYS", "LABEL", "NEXT")
	for _, a := range alarms {
		state := offColor.Sprint("off")
		next := "-"
		if a.IsActive {
			state = onColor.Sprint("on")
			if at, err := model.NextTrigger(a, now); err == nil {
				next = at.Format("Mon 15:04")
			}
		}
		tbl.AddRow(a.ID, a.Clock(), state, a.Days.Summary(), a.DisplayLabel(), next)
	}
	fmt.Fprintln(w, tbl)
}

type addOptions struct {
	label    string
	days     string
	tone     string
	vibrate  bool
	inactive bool
}

func addAdd(topLevel *cobra.Command, o *rootOptions) {
	ao := &addOptions{}
	cmd := &cobra.Command{
		Use:   "add HH:MM",
		Short: "Add an alarm.",
		Example: `
clockd add 6:45
clockd add 07:30 --label gym --days mon,wed,fri
clockd add 09:00 --days weekends --tone ~/sounds/bell.wav --vibrate
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ao.alarm(args[0])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, app *App) error {
				created, err := app.Service.Create(ctx, a)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added alarm #%d at %s (%s)\n", created.ID, created.Clock(), created.Days.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&ao.label, "label", "l", "", "Alarm label.")
	cmd.Flags().StringVarP(&ao.days, "days", "d", "once", "Repeat days: once, daily, weekdays, weekends, a list like mon,fri or a 7 flag mask starting Sunday.")
	cmd.Flags().StringVarP(&ao.tone, "tone", "t", "", "Path to a WAV file. Empty uses the default tone.")
	cmd.Flags().BoolVar(&ao.vibrate, "vibrate", false, "Request vibration while ringing.")
	cmd.Flags().BoolVar(&ao.inactive, "inactive", false, "Store the alarm switched off.")
	topLevel.AddCommand(cmd)
}

func (ao *addOptions) alarm(clock string) (model.Alarm, error) {
	hour, minute, err := model.ParseClock(clock)
	if err != nil {
		return model.Alarm{}, err
	}
	days, err := model.ParseDaySpec(ao.days)
	if err != nil {
		return model.Alarm{}, err
	}
	tone, err := homedir.Expand(ao.tone)
	if err != nil {
		return model.Alarm{}, err
	}
	return model.Alarm{
		Hour:     hour,
		Minute:   minute,
		Label:    model.StringPtr(ao.label),
		IsActive: !ao.inactive,
		Days:     days,
		ToneURI:  model.StringPtr(tone),
		Vibrate:  ao.vibrate,
	}, nil
}

func addRemove(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete an alarm.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid alarm id %q", args[0])
			}
			return o.withApp(cmd, func(ctx context.Context, app *App) error {
				if err := app.Service.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted alarm #%d\n", id)
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func addNext(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show when each active alarm rings next.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, app *App) error {
				alarms, err := app.Service.List(ctx)
				if err != nil {
					return err
				}
				printNext(cmd.OutOrStdout(), alarms, time.Now())
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}

type upcoming struct {
	alarm model.Alarm
	at    time.Time
}

func printNext(w io.Writer, alarms []model.Alarm, now time.Time) {
	list := make([]upcoming, 0, len(alarms))
	for _, a := range alarms {
		if !a.IsActive {
			continue
		}
		at, err := model.NextTrigger(a, now)
		if err != nil {
			continue
		}
		list = append(list, upcoming{alarm: a, at: at})
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "no active alarms")
		return
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].at.Before(list[j].at) })

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "LABEL", "RINGS", "IN")
	for _, u := range list {
		tbl.AddRow(u.alarm.ID, u.alarm.DisplayLabel(), u.at.Format("Mon 02 Jan 15:04"), alarm.FormatLead(u.at, now))
	}
	fmt.Fprintln(w, tbl)
}

func addExport(topLevel *cobra.Command, o *rootOptions) {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export active alarms as iCalendar.",
		Example: `
clockd export > alarms.ics
clockd export --out alarms.ics
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, app *App) error {
				alarms, err := app.Service.List(ctx)
				if err != nil {
					return err
				}
				if out == "" {
					return export.WriteICS(cmd.OutOrStdout(), alarms, time.Now())
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := export.WriteICS(f, alarms, time.Now()); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout.")
	topLevel.AddCommand(cmd)
}
