package reply

import "strings"

// Command identifies one of the recognized slash commands.
type Command int

// Recognized commands.
const (
	CmdNone Command = iota
	CmdClearHistory
	CmdStatus
	CmdHelp
)

// commandSynonyms maps exact trimmed inputs to commands. Matching is strict
// string equality: "清除记忆" without the slash is ordinary chat text, and so
// is any unrecognized slash-prefixed string.
var commandSynonyms = map[string]Command{
	"/清除记忆": CmdClearHistory,
	"/清空记忆": CmdClearHistory,
	"/重置":   CmdClearHistory,
	"/状态":   CmdStatus,
	"/info": CmdStatus,
	"/帮助":   CmdHelp,
	"/help": CmdHelp,
}

// ParseCommand returns the command matching the trimmed input, or CmdNone.
func ParseCommand(input string) Command {
	if cmd, ok := commandSynonyms[strings.TrimSpace(input)]; ok {
		return cmd
	}
	return CmdNone
}

// String returns the command's label for logging and metrics.
func (c Command) String() string {
	switch c {
	case CmdClearHistory:
		return "clear_history"
	case CmdStatus:
		return "status"
	case CmdHelp:
		return "help"
	default:
		return "none"
	}
}
