package coach

import (
	"fmt"

	"github.com/lowaak/running-coach/internal/catalog"
	"github.com/lowaak/running-coach/internal/progression"
)

// FormatCountdown renders seconds as mm:ss. Minutes are not wrapped at 60.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// KindLabel is the word shown above the countdown. Periodic intervals show
// the program title instead.
func KindLabel(kind progression.Kind, title string) string {
	switch kind {
	case progression.KindRun:
		return MessageRun
	case progression.KindWalk:
		return MessageWalk
	case progression.KindWarmup:
		return MessageWarmup
	case progression.KindCooldown:
		return MessageCooldown
	default:
		return title
	}
}

func FormatPeriod(period, total int) string {
	return fmt.Sprintf(MessagePeriodFormat, period, total)
}

// FormatTotal renders a program length for menus, e.g. "31 min" or "45 sec"
func FormatTotal(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%d sec", seconds)
	}
	if seconds%60 == 0 {
		return fmt.Sprintf("%d min", seconds/60)
	}
	return fmt.Sprintf("%d min %d sec", seconds/60, seconds%60)
}

// TimerDisplay is the text content of the timer screen
type TimerDisplay struct {
	Time   string
	Label  string
	Period string
	Status string
}

// BuildTimerDisplay derives the timer screen from a session state.
// A completed session hides the countdown and period and shows "Done!".
func BuildTimerDisplay(state SessionState) TimerDisplay {
	snap := state.Snapshot
	switch state.Status {
	case SessionStatusIdle:
		return TimerDisplay{}
	case SessionStatusCompleted:
		return TimerDisplay{Label: MessageCompleted, Status: state.FamilyTitle}
	}

	display := TimerDisplay{
		Time:   FormatCountdown(state.DisplaySeconds()),
		Label:  KindLabel(snap.Kind, snap.Title),
		Period: FormatPeriod(snap.Period, snap.IntervalsTotal),
		Status: snap.Title,
	}
	if state.Status == SessionStatusPaused {
		display.Status = "Paused"
	}
	return display
}

// MenuItem is one row of a tview.List
type MenuItem struct {
	Main      string
	Secondary string
}

// FamilyMenuItems lists the catalog families for the main menu
func FamilyMenuItems(c *catalog.Catalog) []MenuItem {
	if c == nil {
		return nil
	}
	items := make([]MenuItem, 0, len(c.Families))
	for _, f := range c.Families {
		items = append(items, MenuItem{Main: f.Title, Secondary: f.Subtitle})
	}
	return items
}

// EntryMenuItems lists a family's programs. Periodic entries have no
// subtitle of their own, so the interval length is shown instead.
func EntryMenuItems(f catalog.Family) []MenuItem {
	items := make([]MenuItem, 0, len(f.Entries))
	for _, e := range f.Entries {
		secondary := e.Subtitle
		if f.Style == catalog.StyleSequence {
			if secondary != "" {
				secondary += ", "
			}
			secondary += fmt.Sprintf("%d intervals, %s", len(e.Program.Intervals), FormatTotal(e.Program.TotalSeconds()))
		} else if secondary == "" {
			secondary = "every " + FormatTotal(e.Program.TotalSeconds())
		}
		items = append(items, MenuItem{Main: e.Title, Secondary: secondary})
	}
	return items
}
