package coach

import "time"

// Timer screen texts
const (
	MessageCompleted    = "Done!"
	MessageRun          = "Run"
	MessageWalk         = "Walk"
	MessageWarmup       = "Warm"
	MessageCooldown     = "Cool"
	MessagePeriodFormat = "period %d of %d"
)

const (
	DefaultTickPeriod = time.Second
	maxLogLines       = 1000
)

// UIMode represents the current UI screen
type UIMode int

const (
	UIModeFamilies UIMode = iota // Main menu of program families
	UIModePrograms               // Programs of the selected family
	UIModeTimer                  // Running session
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyHints    string
}

// AllUIModes defines all UI modes in navigation order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeFamilies, DisplayName: "Running Coach", KeyHints: "[yellow]Enter[white] Open  |  [yellow]Esc[white] Quit"},
	{Mode: UIModePrograms, DisplayName: "Programs", KeyHints: "[yellow]Enter[white] Start  |  [yellow]Esc[white] Back"},
	{Mode: UIModeTimer, DisplayName: "Timer", KeyHints: "[yellow]↑[white] Previous  |  [yellow]↓[white] Next  |  [yellow]Space[white] Pause  |  [yellow]Esc[white] Stop"},
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

func (m UIMode) String() string {
	if info, ok := GetUIModeInfo(m); ok {
		return info.DisplayName
	}
	return "Unknown"
}
