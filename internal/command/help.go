package command

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// The help menu is driven by inline buttons: the root menu lists the
// categories, pressing one edits the message into that category's command
// list with a back button. Callback payloads are "help:menu" and
// "help:cat:<name>".

func cmdHelp(ctx context.Context, env *Env, inv *Invocation) error {
	reg := helpRegistry()

	if name := inv.Argument(""); name != "" {
		spec, ok := reg.Lookup(strings.TrimPrefix(name, env.Cfg.CommandPrefix()))
		if !ok {
			return inv.Respond(ctx, "unknown command %q", name)
		}
		return inv.Respond(ctx, "%s", specHelp(spec))
	}

	if err := env.T.Delete(ctx, inv.Msg.ChatID, inv.Msg.ID); err != nil {
		env.Log.Debug("delete help command message", "error", err)
	}
	_, err := env.T.SendWithButtons(ctx, inv.Msg.ChatID, helpMenuText(), helpMenuButtons(reg))
	return err
}

func (d *Dispatcher) handleHelpCallback(ctx context.Context, cb *transport.Callback) error {
	reg := d.reg
	switch {
	case cb.Data == "help:menu":
		return d.env.T.EditWithButtons(ctx, cb.ChatID, cb.MessageID, helpMenuText(), helpMenuButtons(reg))
	case strings.HasPrefix(cb.Data, "help:cat:"):
		cat := strings.TrimPrefix(cb.Data, "help:cat:")
		specs := reg.Category(cat)
		if len(specs) == 0 {
			return nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s commands:\n\n", cat)
		for _, s := range specs {
			fmt.Fprintf(&b, "%s\n    %s\n", s.Usage, s.Help)
		}
		back := [][]transport.Button{{{Label: "« back", Data: "help:menu"}}}
		return d.env.T.EditWithButtons(ctx, cb.ChatID, cb.MessageID, strings.TrimRight(b.String(), "\n"), back)
	default:
		return nil
	}
}

func helpMenuText() string {
	return "command help\npick a category:"
}

// helpMenuButtons lays the categories out two per row.
func helpMenuButtons(reg *Registry) [][]transport.Button {
	var rows [][]transport.Button
	var row []transport.Button
	for _, cat := range categoryOrder {
		if len(reg.Category(cat)) == 0 {
			continue
		}
		row = append(row, transport.Button{Label: cat, Data: "help:cat:" + cat})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func specHelp(s *Spec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s", s.Usage, s.Help)
	if len(s.Aliases) > 0 {
		fmt.Fprintf(&b, "\naliases: %s", strings.Join(s.Aliases, ", "))
	}
	if s.GroupOnly {
		b.WriteString("\ngroups only")
	}
	return b.String()
}

// helpRegistry is the registry view handlers use for .help lookups.
// Handlers only see the Env, but the table is static, so a shared copy
// always agrees with the dispatcher's. Built lazily: cmdHelp is itself
// part of the table, so a package-level initializer would be cyclic.
var (
	helpRegOnce sync.Once
	helpReg     *Registry
)

func helpRegistry() *Registry {
	helpRegOnce.Do(func() { helpReg = NewRegistry() })
	return helpReg
}
