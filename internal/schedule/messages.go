package schedule

import (
	"fmt"
	"strings"
)

// Message renders the restore fact as user-facing text.
func (f RestoreFact) Message() string {
	switch f.Kind {
	case RestoreExpected:
		return fmt.Sprintf("The schedule expects power back at %s.", f.At.Format("15:04"))
	case RestoreOverdue:
		return fmt.Sprintf("The schedule expected power back at %s.", f.At.Format("15:04"))
	case RestoreEmergency:
		return "🚨 Emergency shutdowns are active. The schedule is suspended."
	case RestoreScheduleUnavailable:
		var statuses []string
		if f.TodayStatus != "" && f.TodayStatus != StatusScheduleApplies {
			statuses = append(statuses, fmt.Sprintf("today — %s", f.TodayStatus))
		}
		if f.TomorrowStatus != "" && f.TomorrowStatus != StatusScheduleApplies {
			statuses = append(statuses, fmt.Sprintf("tomorrow — %s", f.TomorrowStatus))
		}
		if len(statuses) > 0 {
			return fmt.Sprintf("Schedule unavailable (%s).", strings.Join(statuses, "; "))
		}
		return "Schedule unavailable."
	case RestoreScheduleEmpty:
		return "No outage intervals found in the schedule."
	default:
		return "Outage outside the schedule, possibly an emergency one."
	}
}

// Message renders the outage fact as user-facing text.
func (f OutageFact) Message() string {
	switch f.Kind {
	case OutageUpcoming:
		if f.Tomorrow {
			return fmt.Sprintf("Next outage tomorrow at %s.", f.At.Format("15:04"))
		}
		return fmt.Sprintf("Next outage at %s.", f.At.Format("15:04"))
	case OutageOverdue:
		return fmt.Sprintf("An outage was due at %s, expect it shortly.", f.At.Format("15:04"))
	case OutageEmergency:
		return "🚨 Emergency shutdowns are active. The schedule is suspended."
	case OutageNotYetPublished:
		return "⌛ The schedule has not been published yet."
	case OutageScheduleUnavailable:
		return fmt.Sprintf("⚠️ Schedule unavailable (status: %s).", f.TodayStatus)
	default:
		return "💡 No outages planned for today."
	}
}

// Summary renders a day block as a multi-line message for schedule-change
// notifications.
func (d Day) Summary() string {
	dateStr := d.Date.Format("02.01.2006")

	switch d.Status {
	case StatusScheduleApplies:
		// rendered below
	case StatusEmergencyShutdowns:
		return fmt.Sprintf("📅 Schedule for %s\n🚨 Schedule suspended. Emergency shutdowns are active.", dateStr)
	case StatusWaitingForSchedule:
		return fmt.Sprintf("📅 Schedule for %s\n⌛ Waiting for an update.", dateStr)
	default:
		return fmt.Sprintf("📅 Schedule for %s\n⚠️ Status: %s", dateStr, d.Status)
	}

	if len(d.Outages) == 0 {
		return fmt.Sprintf("📅 Schedule for %s\n✅ No outages planned.", dateStr)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Schedule for %s\n", dateStr)
	for i, iv := range d.Outages {
		label := string(iv.Type)
		if iv.Type == SlotDefinite {
			label = "Planned"
		}
		fmt.Fprintf(&b, "\n%d. %s – %s (%s)", i+1, iv.Start.Format("15:04"), iv.End.Format("15:04"), label)
	}
	return b.String()
}
