package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/selfgo/internal/services"
)

func cmdWiki(ctx context.Context, env *Env, inv *Invocation) error {
	topic, ok := inv.SubjectText()
	if !ok {
		return usageError(".wiki <topic>")
	}
	sum, err := env.Wiki.Summary(ctx, topic)
	if errors.Is(err, services.ErrNoResult) {
		return inv.Respond(ctx, "no article found for %q", topic)
	}
	if err != nil {
		return err
	}
	out := fmt.Sprintf("%s\n\n%s", sum.Title, sum.Extract)
	if sum.URL != "" {
		out += "\n\n" + sum.URL
	}
	return inv.Respond(ctx, "%s", out)
}

func cmdUrban(ctx context.Context, env *Env, inv *Invocation) error {
	term, ok := inv.SubjectText()
	if !ok {
		return usageError(".ud <term>")
	}
	def, err := env.Urban.Define(ctx, term)
	if errors.Is(err, services.ErrNoResult) {
		return inv.Respond(ctx, "no definition found for %q", term)
	}
	if err != nil {
		return err
	}
	out := fmt.Sprintf("%s\n\n%s", def.Word, def.Definition)
	if def.Example != "" {
		out += "\n\nexample:\n" + def.Example
	}
	return inv.Respond(ctx, "%s", out)
}

func cmdWeather(ctx context.Context, env *Env, inv *Invocation) error {
	city, ok := inv.SubjectText()
	if !ok {
		return usageError(".weather <city>")
	}
	rep, err := env.Weather.Current(ctx, city)
	if errors.Is(err, services.ErrNotConfigured) {
		return inv.Respond(ctx, "weather lookups need an OpenWeatherMap API key in the config")
	}
	if errors.Is(err, services.ErrNoResult) {
		return inv.Respond(ctx, "no weather data for %q", city)
	}
	if err != nil {
		return err
	}
	return inv.Respond(ctx,
		"weather in %s, %s: %s\ntemperature: %.1f°C (feels like %.1f°C)\nhumidity: %d%%\nwind: %.1f m/s",
		rep.City, rep.Country, rep.Description, rep.TempC, rep.FeelsLikeC, rep.Humidity, rep.WindSpeed)
}

func cmdTime(ctx context.Context, env *Env, inv *Invocation) error {
	zone, ok := inv.SubjectText()
	if !ok {
		return usageError(".time <Area/City>")
	}
	zt, err := env.Time.Now(ctx, zone)
	if errors.Is(err, services.ErrNoResult) {
		return inv.Respond(ctx, "unknown timezone %q (use Area/City, e.g. Europe/Berlin)", zone)
	}
	if err != nil {
		return err
	}
	return inv.Respond(ctx, "time in %s: %s (UTC%s)", zt.Timezone, zt.DateTime, zt.UTCOff)
}

func cmdWhois(ctx context.Context, env *Env, inv *Invocation) error {
	user, _, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "id: %d\n", user.ID)
	if user.FirstName != "" {
		name := user.FirstName
		if user.LastName != "" {
			name += " " + user.LastName
		}
		fmt.Fprintf(&b, "name: %s\n", name)
	}
	if user.Username != "" {
		fmt.Fprintf(&b, "username: @%s\n", user.Username)
	}
	if user.IsBot {
		b.WriteString("type: bot\n")
	}
	warns, err := env.Stores.Warnings.List(ctx, user.ID, inv.Msg.ChatID)
	if err == nil && len(warns) > 0 {
		fmt.Fprintf(&b, "warnings here: %d\n", len(warns))
	}
	return inv.Respond(ctx, "%s", strings.TrimRight(b.String(), "\n"))
}

func cmdGinfo(ctx context.Context, env *Env, inv *Invocation) error {
	chat, err := env.T.ChatInfo(ctx, inv.Msg.ChatID)
	if err != nil {
		return fmt.Errorf("fetch chat info: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "title: %s\n", chat.Title)
	fmt.Fprintf(&b, "id: %d\n", chat.ID)
	fmt.Fprintf(&b, "type: %s\n", chat.Kind)
	if chat.MemberCount > 0 {
		fmt.Fprintf(&b, "members: %d\n", chat.MemberCount)
	}
	if chat.Description != "" {
		fmt.Fprintf(&b, "description: %s\n", chat.Description)
	}
	return inv.Respond(ctx, "%s", strings.TrimRight(b.String(), "\n"))
}

func cmdShorten(ctx context.Context, env *Env, inv *Invocation) error {
	long, ok := inv.SubjectText()
	if !ok {
		return usageError(".shorten <url>")
	}
	if !strings.HasPrefix(long, "http://") && !strings.HasPrefix(long, "https://") {
		long = "https://" + long
	}
	short, err := env.Shorten.Shorten(ctx, long)
	if errors.Is(err, services.ErrNoResult) {
		return inv.Respond(ctx, "could not shorten %q", long)
	}
	if err != nil {
		return err
	}
	return inv.Respond(ctx, "%s", short)
}
