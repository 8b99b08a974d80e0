package adapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/iris"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
)

var (
	controlCharsPattern = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	bungieCodePattern   = regexp.MustCompile(`#\d{1,4}$`)
)

const maxOfflineDays = 365

// MessageAdapter converts KakaoTalk messages to bot commands
type MessageAdapter struct {
	prefix string
}

func NewMessageAdapter(prefix string) *MessageAdapter {
	return &MessageAdapter{prefix: prefix}
}

// ParsedCommand represents a parsed command
type ParsedCommand struct {
	Type       domain.CommandType
	Params     map[string]any
	RawMessage string
}

// ParseMessage parses a KakaoTalk message into a command. Messages without
// the prefix or with an unrecognised verb yield CommandUnknown.
func (ma *MessageAdapter) ParseMessage(message *iris.Message) *ParsedCommand {
	if message == nil || message.Msg == "" {
		return ma.createUnknownCommand("")
	}

	text := strings.TrimSpace(controlCharsPattern.ReplaceAllString(message.Msg, " "))
	if !strings.HasPrefix(text, ma.prefix) {
		return ma.createUnknownCommand(text)
	}

	parts := strings.Fields(strings.TrimSpace(text[len(ma.prefix):]))
	if len(parts) == 0 {
		return ma.createUnknownCommand(text)
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch {
	case util.Contains([]string{"정보", "info", "상태"}, command):
		return ma.simple(domain.CommandInfo, text)
	case util.Contains([]string{"업타임", "uptime"}, command):
		return ma.simple(domain.CommandUptime, text)
	case util.Contains([]string{"접속", "접속자", "online"}, command):
		return ma.simple(domain.CommandOnline, text)
	case util.Contains([]string{"미접", "미접속", "offline"}, command):
		return &ParsedCommand{Type: domain.CommandOffline, Params: parseOfflineArgs(args), RawMessage: text}
	case util.Contains([]string{"휴가", "rest"}, command):
		return ma.parseRestCommand(args, text)
	case util.Contains([]string{"차단", "block"}, command):
		return ma.parseBlockCommand(args, text)
	case util.Contains([]string{"알림", "alert"}, command):
		return ma.simple(domain.CommandAlertToggle, text)
	case util.Contains([]string{"점검", "check"}, command):
		return ma.simple(domain.CommandCheck, text)
	case util.Contains([]string{"기록", "history"}, command):
		return &ParsedCommand{Type: domain.CommandHistory, Params: parseLimitArgs(args), RawMessage: text}
	case util.Contains([]string{"도움말", "도움", "help", "명령어"}, command):
		return ma.simple(domain.CommandHelp, text)
	}

	return ma.createUnknownCommand(text)
}

func (ma *MessageAdapter) parseRestCommand(args []string, raw string) *ParsedCommand {
	if len(args) == 0 {
		return ma.simple(domain.CommandRestList, raw)
	}

	sub := strings.ToLower(args[0])
	rest := args[1:]

	switch {
	case util.Contains([]string{"등록", "추가", "add"}, sub):
		params := map[string]any{}
		dateIdx := -1
		for i, arg := range rest {
			if d, err := domain.ParseDate(arg); err == nil {
				params["end_date"] = d
				dateIdx = i
				break
			}
		}
		if dateIdx < 0 {
			if query := strings.Join(rest, " "); query != "" {
				params["query"] = query
			}
			return &ParsedCommand{Type: domain.CommandRestAdd, Params: params, RawMessage: raw}
		}
		if query := strings.Join(rest[:dateIdx], " "); query != "" {
			params["query"] = query
		}
		if desc := strings.Join(rest[dateIdx+1:], " "); desc != "" {
			params["description"] = desc
		}
		return &ParsedCommand{Type: domain.CommandRestAdd, Params: params, RawMessage: raw}
	case util.Contains([]string{"해제", "삭제", "remove"}, sub):
		return &ParsedCommand{Type: domain.CommandRestRemove, Params: queryParams(rest), RawMessage: raw}
	case util.Contains([]string{"목록", "list"}, sub):
		return ma.simple(domain.CommandRestList, raw)
	}

	return ma.simple(domain.CommandHelp, raw)
}

func (ma *MessageAdapter) parseBlockCommand(args []string, raw string) *ParsedCommand {
	if len(args) == 0 {
		return &ParsedCommand{Type: domain.CommandBlockList, Params: map[string]any{"page": 0}, RawMessage: raw}
	}

	sub := strings.ToLower(args[0])
	rest := args[1:]

	switch {
	case util.Contains([]string{"등록", "추가", "add"}, sub):
		key, desc := splitLookupKey(rest)
		params := map[string]any{}
		if key != "" {
			params["key"] = key
		}
		if desc != "" {
			params["description"] = desc
		}
		return &ParsedCommand{Type: domain.CommandBlockAdd, Params: params, RawMessage: raw}
	case util.Contains([]string{"해제", "삭제", "remove"}, sub):
		key, _ := splitLookupKey(rest)
		params := map[string]any{}
		if key != "" {
			params["key"] = key
		}
		return &ParsedCommand{Type: domain.CommandBlockRemove, Params: params, RawMessage: raw}
	case util.Contains([]string{"목록", "list"}, sub):
		return &ParsedCommand{Type: domain.CommandBlockList, Params: map[string]any{"page": parsePage(rest)}, RawMessage: raw}
	}

	return ma.simple(domain.CommandHelp, raw)
}

// splitLookupKey separates a player key from a trailing description. Bungie
// names may contain spaces, so the key runs up to the first token ending in
// "#code". A leading numeric token is a membership id on its own.
func splitLookupKey(args []string) (key, description string) {
	if len(args) == 0 {
		return "", ""
	}
	if util.IsNumeric(args[0]) {
		return args[0], strings.Join(args[1:], " ")
	}
	for i, arg := range args {
		if bungieCodePattern.MatchString(arg) {
			return strings.Join(args[:i+1], " "), strings.Join(args[i+1:], " ")
		}
	}
	return args[0], strings.Join(args[1:], " ")
}

// parsePage converts a one-based page argument to the zero-based index used
// by the block list. Negative values count from the end and pass through.
func parsePage(args []string) int {
	if len(args) == 0 {
		return 0
	}
	page, err := strconv.Atoi(args[0])
	if err != nil {
		return 0
	}
	if page > 0 {
		return page - 1
	}
	return page
}

func parseOfflineArgs(args []string) map[string]any {
	if len(args) == 0 {
		return map[string]any{}
	}
	days, err := strconv.Atoi(strings.TrimSuffix(args[0], "일"))
	if err != nil || days < 1 {
		return map[string]any{}
	}
	return map[string]any{"days": util.Min(days, maxOfflineDays)}
}

func parseLimitArgs(args []string) map[string]any {
	if len(args) == 0 {
		return map[string]any{}
	}
	limit, err := strconv.Atoi(args[0])
	if err != nil || limit < 1 {
		return map[string]any{}
	}
	return map[string]any{"limit": util.Min(limit, 50)}
}

func queryParams(args []string) map[string]any {
	query := strings.Join(args, " ")
	if query == "" {
		return map[string]any{}
	}
	return map[string]any{"query": query}
}

func (ma *MessageAdapter) simple(t domain.CommandType, raw string) *ParsedCommand {
	return &ParsedCommand{Type: t, Params: map[string]any{}, RawMessage: raw}
}

func (ma *MessageAdapter) createUnknownCommand(text string) *ParsedCommand {
	return &ParsedCommand{
		Type:       domain.CommandUnknown,
		Params:     make(map[string]any),
		RawMessage: text,
	}
}
