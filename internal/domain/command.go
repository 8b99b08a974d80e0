package domain

type CommandType string

const (
	CommandInfo        CommandType = "info"
	CommandUptime      CommandType = "uptime"
	CommandOnline      CommandType = "online"
	CommandOffline     CommandType = "offline"
	CommandRestAdd     CommandType = "rest_add"
	CommandRestRemove  CommandType = "rest_remove"
	CommandRestList    CommandType = "rest_list"
	CommandBlockAdd    CommandType = "block_add"
	CommandBlockRemove CommandType = "block_remove"
	CommandBlockList   CommandType = "block_list"
	CommandAlertToggle CommandType = "alert_toggle"
	CommandCheck       CommandType = "check"
	CommandHistory     CommandType = "history"
	CommandHelp        CommandType = "help"
	CommandUnknown     CommandType = "unknown"
)

func (c CommandType) String() string {
	return string(c)
}

func (c CommandType) IsValid() bool {
	switch c {
	case CommandInfo, CommandUptime, CommandOnline, CommandOffline,
		CommandRestAdd, CommandRestRemove, CommandRestList,
		CommandBlockAdd, CommandBlockRemove, CommandBlockList,
		CommandAlertToggle, CommandCheck, CommandHistory, CommandHelp, CommandUnknown:
		return true
	default:
		return false
	}
}
