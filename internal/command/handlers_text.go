package command

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

func cmdReverse(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".reverse <text|reply>")
	}
	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return inv.Respond(ctx, "%s", string(runes))
}

var owoFaces = []string{"owo", "uwu", ">w<", "^w^", ":3"}

func cmdOwo(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".owo <text|reply>")
	}
	out := strings.NewReplacer(
		"r", "w", "R", "W",
		"l", "w", "L", "W",
		"na", "nya", "Na", "Nya", "NA", "NYA",
	).Replace(text)
	face := owoFaces[utf8.RuneCountInString(text)%len(owoFaces)]
	return inv.Respond(ctx, "%s %s", out, face)
}

func cmdMock(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".mock <text|reply>")
	}
	var b strings.Builder
	upper := false
	for _, r := range text {
		if !unicode.IsLetter(r) {
			b.WriteRune(r)
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		upper = !upper
	}
	return inv.Respond(ctx, "%s", b.String())
}

func cmdB64Encode(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".b64e <text|reply>")
	}
	return inv.Respond(ctx, "%s", base64.StdEncoding.EncodeToString([]byte(text)))
}

func cmdB64Decode(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".b64d <text|reply>")
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return fmt.Errorf("not valid base64: %w", err)
	}
	if !utf8.Valid(decoded) {
		return fmt.Errorf("decoded bytes are not text")
	}
	return inv.Respond(ctx, "%s", decoded)
}

// styleText maps ASCII letters into a unicode mathematical alphabet.
// offsets index the capital A of each styled alphabet.
func styleText(text string, upperBase, lowerBase rune) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(upperBase + (r - 'A'))
		case r >= 'a' && r <= 'z':
			b.WriteRune(lowerBase + (r - 'a'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cmdBold(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".bold <text|reply>")
	}
	return inv.Respond(ctx, "%s", styleText(text, 0x1D5D4, 0x1D5EE))
}

func cmdItalic(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".italic <text|reply>")
	}
	return inv.Respond(ctx, "%s", styleText(text, 0x1D608, 0x1D622))
}

func cmdCode(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".code <text|reply>")
	}
	return inv.Respond(ctx, "%s", styleText(text, 0x1D670, 0x1D68A))
}

func cmdStrike(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".strike <text|reply>")
	}
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		b.WriteRune('̶')
	}
	return inv.Respond(ctx, "%s", b.String())
}

func cmdCount(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".count <text|reply>")
	}
	lines := strings.Count(text, "\n") + 1
	return inv.Respond(ctx, "characters: %d\nwords: %d\nlines: %d",
		utf8.RuneCountInString(text), len(strings.Fields(text)), lines)
}

func cmdHash(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".hash <text|reply>")
	}
	data := []byte(text)
	return inv.Respond(ctx, "md5: %x\nsha1: %x\nsha256: %x",
		md5.Sum(data), sha1.Sum(data), sha256.Sum256(data))
}
