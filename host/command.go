package host

import (
	"fmt"
	"strings"
)

// CommandKind identifies a control action.
type CommandKind uint8

const (
	CmdPause CommandKind = iota
	CmdResume
	CmdTogglePause
	CmdSetSpeed
	CmdCycleSpeed
	CmdReset
)

var commandNames = map[string]CommandKind{
	"pause":       CmdPause,
	"resume":      CmdResume,
	"toggle":      CmdTogglePause,
	"speed":       CmdSetSpeed,
	"cycle_speed": CmdCycleSpeed,
	"reset":       CmdReset,
}

func (k CommandKind) String() string {
	for name, kind := range commandNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// MaxSpeed is the largest speed a command may request. The configured
// host.max_speed lowers it further when the command is applied.
const MaxSpeed = 100000

// Command is a control request applied on the simulation goroutine.
// Value is only used by CmdSetSpeed.
type Command struct {
	Kind  CommandKind
	Value int
}

// ParseCommand converts a command name into a Command.
func ParseCommand(name string, value int) (Command, error) {
	kind, ok := commandNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", name)
	}
	if kind == CmdSetSpeed && (value < 1 || value > MaxSpeed) {
		return Command{}, fmt.Errorf("speed must be between 1 and %d, got %d", MaxSpeed, value)
	}
	return Command{Kind: kind, Value: value}, nil
}
