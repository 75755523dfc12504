package update

import (
	"fmt"
	"time"
)

const aboutMarkdown = `# clockd

Alarms ring at their local wall-clock time.

- **Once** alarms ring on the next matching minute and then switch off.
- **Repeating** alarms ring on every selected weekday (keys 1-7, Sunday first).
- **Snooze** silences the alert and rings again %s later.
- Turning an alarm off or deleting it also drops a pending snooze.

Use ` + "`/`" + ` for commands such as ` + "`add 07:30 gym`" + ` or ` + "`days 3 weekdays`" + `.
`

func aboutText(snooze time.Duration) string {
	return fmt.Sprintf(aboutMarkdown, snoozeText(snooze))
}

func snoozeText(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
