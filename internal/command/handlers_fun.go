package command

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strconv"
	"strings"
)

func cmdDice(ctx context.Context, env *Env, inv *Invocation) error {
	sides := 6
	if arg := inv.Argument(""); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 2 {
			return usageError(".dice [sides>=2]")
		}
		sides = n
	}
	return inv.Respond(ctx, "🎲 rolled %d (d%d)", rand.Intn(sides)+1, sides)
}

func cmdCoin(ctx context.Context, env *Env, inv *Invocation) error {
	side := "heads"
	if rand.Intn(2) == 1 {
		side = "tails"
	}
	return inv.Respond(ctx, "🪙 %s", side)
}

func cmdChoose(ctx context.Context, env *Env, inv *Invocation) error {
	raw := inv.Argument("")
	if raw == "" {
		return usageError(".choose option; option; ...")
	}
	sep := ";"
	if !strings.Contains(raw, ";") {
		sep = " "
	}
	var options []string
	for _, part := range strings.Split(raw, sep) {
		if p := strings.TrimSpace(part); p != "" {
			options = append(options, p)
		}
	}
	if len(options) < 2 {
		return usageError(".choose option; option; ...")
	}
	return inv.Respond(ctx, "I choose: %s", options[rand.Intn(len(options))])
}

func cmdShrug(ctx context.Context, env *Env, inv *Invocation) error {
	return inv.Respond(ctx, `¯\_(ツ)_/¯`)
}

func cmdTable(ctx context.Context, env *Env, inv *Invocation) error {
	return inv.Respond(ctx, "(╯°□°)╯︵ ┻━┻")
}

// cmdLovecalc scores a pair of names. The score is a stable hash so the
// same pair always gets the same answer.
func cmdLovecalc(ctx context.Context, env *Env, inv *Invocation) error {
	fields := inv.Fields()
	if len(fields) < 2 {
		return usageError(".lovecalc <name> <name>")
	}
	a, b := strings.ToLower(fields[0]), strings.ToLower(strings.Join(fields[1:], " "))
	if b < a {
		a, b = b, a
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%s\x00%s", a, b)
	score := h.Sum32() % 101
	var verdict string
	switch {
	case score >= 80:
		verdict = "a match made in heaven"
	case score >= 50:
		verdict = "there is definitely something there"
	case score >= 20:
		verdict = "could work with some effort"
	default:
		verdict = "maybe just stay friends"
	}
	return inv.Respond(ctx, "💘 %s + %s = %d%%\n%s", fields[0], strings.Join(fields[1:], " "), score, verdict)
}
