package command

import (
	"context"

	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// Handler is one command body. Returning an error makes the dispatcher
// surface it as the command's reply; returning nil means the handler
// already responded (or chose silence).
type Handler func(ctx context.Context, env *Env, inv *Invocation) error

// Spec describes one registered command.
type Spec struct {
	Name     string
	Aliases  []string
	Category string
	Usage    string
	Help     string
	// Caps lists the admin capabilities the gate requires. A non-empty
	// list implies the command is group-only.
	Caps      []transport.Capability
	GroupOnly bool
	Handler   Handler
}

// Categories in help-menu order.
const (
	catGeneral    = "General"
	catText       = "Text"
	catFun        = "Fun"
	catInfo       = "Info"
	catAdmin      = "Admin"
	catAutomation = "Automation"
)

var categoryOrder = []string{catGeneral, catText, catFun, catInfo, catAdmin, catAutomation}

// Registry is the static command table with token and alias lookup.
type Registry struct {
	specs  []*Spec
	byName map[string]*Spec
}

// NewRegistry builds the full command table. The set is fixed at startup;
// there is no runtime registration.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Spec)}
	for _, s := range commandTable() {
		if len(s.Caps) > 0 {
			s.Handler = requireCaps(s.Handler, s.Caps...)
			s.GroupOnly = true
		} else if s.GroupOnly {
			s.Handler = requireGroup(s.Handler)
		}
		r.specs = append(r.specs, s)
		r.byName[s.Name] = s
		for _, a := range s.Aliases {
			r.byName[a] = s
		}
	}
	return r
}

// Lookup resolves a command token (exact match, aliases included).
func (r *Registry) Lookup(token string) (*Spec, bool) {
	s, ok := r.byName[token]
	return s, ok
}

// Category returns the specs in one category, in registration order.
func (r *Registry) Category(name string) []*Spec {
	var out []*Spec
	for _, s := range r.specs {
		if s.Category == name {
			out = append(out, s)
		}
	}
	return out
}

func commandTable() []*Spec {
	return []*Spec{
		// General
		{Name: "ping", Category: catGeneral, Usage: ".ping", Help: "round-trip latency check", Handler: cmdPing},
		{Name: "echo", Category: catGeneral, Usage: ".echo <text>", Help: "repeat the given text", Handler: cmdEcho},
		{Name: "type", Category: catGeneral, Usage: ".type <text>", Help: "retype the text with a typing indicator", Handler: cmdType},
		{Name: "id", Category: catGeneral, Usage: ".id [reply]", Help: "show chat, user and message ids", Handler: cmdID},
		{Name: "calc", Category: catGeneral, Usage: ".calc <expression>", Help: "evaluate an arithmetic expression", Handler: cmdCalc},
		{Name: "uptime", Category: catGeneral, Usage: ".uptime", Help: "time since the bot started", Handler: cmdUptime},
		{Name: "logs", Category: catGeneral, Usage: ".logs", Help: "upload the current log file", Handler: cmdLogs},
		{Name: "restart", Category: catGeneral, Usage: ".restart", Help: "restart the bot process", Handler: cmdRestart},
		{Name: "help", Category: catGeneral, Usage: ".help [command]", Help: "interactive command menu", Handler: cmdHelp},

		// Text
		{Name: "reverse", Category: catText, Usage: ".reverse <text|reply>", Help: "reverse the text", Handler: cmdReverse},
		{Name: "owo", Category: catText, Usage: ".owo <text|reply>", Help: "owoify the text", Handler: cmdOwo},
		{Name: "mock", Category: catText, Usage: ".mock <text|reply>", Help: "aLtErNaTiNg CaPs", Handler: cmdMock},
		{Name: "b64e", Aliases: []string{"base64e"}, Category: catText, Usage: ".b64e <text|reply>", Help: "base64-encode the text", Handler: cmdB64Encode},
		{Name: "b64d", Aliases: []string{"base64d"}, Category: catText, Usage: ".b64d <text|reply>", Help: "base64-decode the text", Handler: cmdB64Decode},
		{Name: "bold", Category: catText, Usage: ".bold <text|reply>", Help: "bold unicode styling", Handler: cmdBold},
		{Name: "italic", Category: catText, Usage: ".italic <text|reply>", Help: "italic unicode styling", Handler: cmdItalic},
		{Name: "code", Category: catText, Usage: ".code <text|reply>", Help: "monospace unicode styling", Handler: cmdCode},
		{Name: "strike", Category: catText, Usage: ".strike <text|reply>", Help: "strikethrough styling", Handler: cmdStrike},
		{Name: "count", Category: catText, Usage: ".count <text|reply>", Help: "character and word counts", Handler: cmdCount},
		{Name: "hash", Category: catText, Usage: ".hash <text|reply>", Help: "md5, sha1 and sha256 digests", Handler: cmdHash},

		// Fun
		{Name: "dice", Category: catFun, Usage: ".dice [sides]", Help: "roll a die (default 6 sides)", Handler: cmdDice},
		{Name: "coin", Category: catFun, Usage: ".coin", Help: "flip a coin", Handler: cmdCoin},
		{Name: "choose", Category: catFun, Usage: ".choose a; b; c", Help: "pick one of the options", Handler: cmdChoose},
		{Name: "shrug", Category: catFun, Usage: ".shrug", Help: "¯\\_(ツ)_/¯", Handler: cmdShrug},
		{Name: "table", Category: catFun, Usage: ".table", Help: "flip a table", Handler: cmdTable},
		{Name: "lovecalc", Category: catFun, Usage: ".lovecalc <a> <b>", Help: "compatibility score for two names", Handler: cmdLovecalc},

		// Info
		{Name: "wiki", Category: catInfo, Usage: ".wiki <topic>", Help: "wikipedia summary", Handler: cmdWiki},
		{Name: "ud", Category: catInfo, Usage: ".ud <term>", Help: "urban dictionary definition", Handler: cmdUrban},
		{Name: "weather", Category: catInfo, Usage: ".weather <city>", Help: "current weather", Handler: cmdWeather},
		{Name: "time", Category: catInfo, Usage: ".time <Area/City>", Help: "current time in a timezone", Handler: cmdTime},
		{Name: "whois", Category: catInfo, Usage: ".whois [reply|id|@user]", Help: "user details", Handler: cmdWhois},
		{Name: "ginfo", Category: catInfo, Usage: ".ginfo", Help: "group details", GroupOnly: true, Handler: cmdGinfo},
		{Name: "shorten", Category: catInfo, Usage: ".shorten <url>", Help: "shorten a link", Handler: cmdShorten},

		// Admin
		{Name: "ban", Category: catAdmin, Usage: ".ban [reply|id|@user] [duration] [reason]", Help: "ban a member", Caps: []transport.Capability{transport.CapRestrictMembers}, Handler: cmdBan},
		{Name: "unban", Category: catAdmin, Usage: ".unban [reply|id|@user]", Help: "lift a ban", Caps: []transport.Capability{transport.CapRestrictMembers}, Handler: cmdUnban},
		{Name: "kick", Category: catAdmin, Usage: ".kick [reply|id|@user]", Help: "remove a member without banning", Caps: []transport.Capability{transport.CapRestrictMembers}, Handler: cmdKick},
		{Name: "mute", Category: catAdmin, Usage: ".mute [reply|id|@user] [duration]", Help: "silence a member", Caps: []transport.Capability{transport.CapRestrictMembers}, Handler: cmdMute},
		{Name: "unmute", Category: catAdmin, Usage: ".unmute [reply|id|@user]", Help: "restore a member's voice", Caps: []transport.Capability{transport.CapRestrictMembers}, Handler: cmdUnmute},
		{Name: "promote", Category: catAdmin, Usage: ".promote [reply|id|@user]", Help: "grant admin rights", Caps: []transport.Capability{transport.CapPromoteMembers}, Handler: cmdPromote},
		{Name: "demote", Category: catAdmin, Usage: ".demote [reply|id|@user]", Help: "revoke admin rights", Caps: []transport.Capability{transport.CapPromoteMembers}, Handler: cmdDemote},
		{Name: "pin", Category: catAdmin, Usage: ".pin [reply]", Help: "pin the replied-to message", Caps: []transport.Capability{transport.CapPinMessages}, Handler: cmdPin},
		{Name: "unpin", Category: catAdmin, Usage: ".unpin [reply]", Help: "unpin the replied-to message", Caps: []transport.Capability{transport.CapPinMessages}, Handler: cmdUnpin},
		{Name: "del", Category: catAdmin, Usage: ".del [reply]", Help: "delete the replied-to message", Caps: []transport.Capability{transport.CapDeleteMessages}, Handler: cmdDel},
		{Name: "purge", Category: catAdmin, Usage: ".purge [reply] [n]", Help: "delete a span of recent messages", Caps: []transport.Capability{transport.CapDeleteMessages}, Handler: cmdPurge},
		{Name: "setgtitle", Category: catAdmin, Usage: ".setgtitle <title>", Help: "set the group title", Caps: []transport.Capability{transport.CapChangeInfo}, Handler: cmdSetGTitle},
		{Name: "setgdesc", Category: catAdmin, Usage: ".setgdesc <description>", Help: "set the group description", Caps: []transport.Capability{transport.CapChangeInfo}, Handler: cmdSetGDesc},
		{Name: "warn", Category: catAdmin, Usage: ".warn [reply|id|@user] [reason]", Help: "record a warning", GroupOnly: true, Handler: cmdWarn},
		{Name: "unwarn", Category: catAdmin, Usage: ".unwarn [reply|id|@user]", Help: "remove the oldest warning", GroupOnly: true, Handler: cmdUnwarn},
		{Name: "warns", Category: catAdmin, Usage: ".warns [reply|id|@user]", Help: "list warnings", GroupOnly: true, Handler: cmdWarns},
		{Name: "gban", Category: catAdmin, Usage: ".gban [reply|id|@user] [reason]", Help: "ban across every known group", Handler: cmdGban},
		{Name: "ungban", Category: catAdmin, Usage: ".ungban [reply|id|@user]", Help: "lift a global ban", Handler: cmdUngban},
		{Name: "antilink", Category: catAdmin, Usage: ".antilink on|off", Help: "toggle link deletion in this group", Caps: []transport.Capability{transport.CapDeleteMessages}, Handler: cmdAntilink},
		{Name: "antiflood", Category: catAdmin, Usage: ".antiflood on|off [threshold]", Help: "mute members who flood the chat", Caps: []transport.Capability{transport.CapRestrictMembers}, Handler: cmdAntiflood},
		{Name: "setwelcome", Category: catAdmin, Usage: ".setwelcome <text>", Help: "greet new members with this text", GroupOnly: true, Handler: cmdSetWelcome},
		{Name: "delwelcome", Category: catAdmin, Usage: ".delwelcome", Help: "stop greeting new members", GroupOnly: true, Handler: cmdDelWelcome},

		// Automation
		{Name: "afk", Category: catAutomation, Usage: ".afk [reason] | .afk off", Help: "toggle away auto-replies", Handler: cmdAFK},
		{Name: "remind", Category: catAutomation, Usage: ".remind <duration> <text>", Help: "get a reminder later", Handler: cmdRemind},
		{Name: "note", Category: catAutomation, Usage: ".note <name> <content|reply>", Help: "save a named note", Handler: cmdNote},
		{Name: "getnote", Category: catAutomation, Usage: ".getnote <name>", Help: "recall a note", Handler: cmdGetNote},
		{Name: "delnote", Category: catAutomation, Usage: ".delnote <name>", Help: "delete a note", Handler: cmdDelNote},
		{Name: "allnotes", Category: catAutomation, Usage: ".allnotes", Help: "list note names", Handler: cmdAllNotes},
		{Name: "schedule", Category: catAutomation, Usage: ".schedule <duration> <text> | .schedule cron \"<expr>\" <text>", Help: "send a message to this chat later", Handler: cmdSchedule},
		{Name: "imgedit", Category: catAutomation, Usage: ".imgedit gray|blur|flip|rotate90 [reply to photo]", Help: "apply a filter to a photo", Handler: cmdImgEdit},
		{Name: "qr", Category: catAutomation, Usage: ".qr <text|reply>", Help: "render text as a QR code", Handler: cmdQR},
	}
}
