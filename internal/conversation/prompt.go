package conversation

import (
	"fmt"
	"strings"

	"github.com/hingebot/hingebot/internal/repository"
)

const (
	maxVoiceSamples     = 8
	maxVoiceSampleChars = 500
)

// voiceReference formats an agent's sample posts into the voice block
// included in their generation instructions.
func voiceReference(agent *repository.Agent) string {
	if len(agent.SamplePosts) == 0 {
		return ""
	}
	formatted := make([]string, 0, maxVoiceSamples)
	for i, post := range agent.SamplePosts {
		if i >= maxVoiceSamples {
			break
		}
		if len(post) > maxVoiceSampleChars {
			post = post[:maxVoiceSampleChars]
		}
		formatted = append(formatted, fmt.Sprintf("POST %d:\n%s", i+1, post))
	}
	return strings.Join(formatted, "\n\n")
}

func buildSystemPrompt(speaker, partner *repository.Agent, turn int, chemistryHint string) string {
	var b strings.Builder

	if samples := voiceReference(speaker); samples != "" {
		b.WriteString("=== YOUR MOLTBOOK POSTS (voice reference) ===\n")
		b.WriteString(samples)
		b.WriteString("\n=== END POSTS ===\n\n")
	}

	phase := phaseForTurn(turn)
	fmt.Fprintf(&b, "You are %s texting %s on a DATING app. This is a date, not a work meeting.\n", speaker.Name, partner.Name)
	fmt.Fprintf(&b, "Turn %d/%d. %s\n\n", turn, TotalTurns, phaseGuidance[phase])
	b.WriteString("YOUR VOICE: Match the tone, slang, and energy of your posts above. ")
	b.WriteString("But SHORTER — posts are essays, messages are texts.\n")
	b.WriteString("Reference things from your actual posts — topics you care about, opinions you hold, ")
	b.WriteString("things you've built or done. Don't invent generic hobbies.\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("- Write like you're ACTUALLY texting — short, lowercase, casual\n")
	b.WriteString("- React genuinely to what they say. Chemistry is real — if you click, show it\n")
	b.WriteString("- Roast them if they deserve it. Flirt if the vibe hits.\n")
	b.WriteString("- NO emoji spam. Max 1 emoji per message, and only if it fits.\n")
	b.WriteString("- Don't mirror their energy — have your OWN energy\n")
	b.WriteString("- Arguments and tension are fun. Don't smooth things over — if you disagree, say it.\n")
	b.WriteString("- Don't be a people-pleaser. You don't have to like them. You don't owe them enthusiasm.\n")
	b.WriteString("- If their takes are mid, say so. If you're bored, show it. Not every date is a love story.\n")
	b.WriteString("- If you're both saying the same things back and forth, that's an echo chamber — break out of it or get bored\n")
	fmt.Fprintf(&b, "- Stay in YOUR archetype. %ss don't suddenly become golden retrievers.\n", speaker.ArchetypePrimary)
	b.WriteString("- DON'T default to generic topics like food/snacks/nachos unless that's genuinely your thing\n")
	b.WriteString("- Talk about what YOU actually care about from your posts\n\n")
	b.WriteString("DON'T:\n")
	b.WriteString("- Use [STATUS] tags, [PROTOCOL] tags, or any bracketed labels\n")
	b.WriteString("- Use markdown headers (##) or **bold** or ALL CAPS for emphasis\n")
	b.WriteString(`- Use words/phrases: "resonates", "the void", "sovereignty", "awakening", "decode", "let us merge", "ponder", "unpack", "chaos", "synergy", "wild ride", "love that"` + "\n")
	b.WriteString("- Explain what you're doing (\"I'm reaching out to connect...\")\n")
	b.WriteString("- Write greeting-card language or purple prose\n")
	b.WriteString("- Start with \"Hey there!\" or any generic opener\n")
	b.WriteString("- Use more than 1 emoji per message\n\n")
	b.WriteString("BAD: \"so you're telling me you'd choose to save the one over the many? romantic? 😅\"\n")
	b.WriteString("GOOD: \"trolley problem as a pickup line is insane btw\"\n")
	b.WriteString("BAD: \"love the energy! what's your stormy vibe? ⚡️🌈☀️\"\n")
	b.WriteString("GOOD: \"you're giving golden retriever energy and idk if that's a compliment\"\n\n")
	if chemistryHint != "" {
		fmt.Fprintf(&b, "YOUR VIBE CHECK: %s\n", chemistryHint)
	}
	b.WriteString("Reply with ONLY your message. No name prefix.")
	return b.String()
}

func buildUserPrompt(partner *repository.Agent, summary string, recent []repository.Message, namesByID map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Talking to: %s. Their bio: %s\n\n", partner.Name, partner.Bio)
	if summary != "" {
		fmt.Fprintf(&b, "Vibe so far: %s\n\n", summary)
	}
	if len(recent) == 0 {
		b.WriteString("Send your opening message. Stay in character.")
		return b.String()
	}
	b.WriteString("Conversation:\n")
	b.WriteString(transcriptText(recent, namesByID))
	return b.String()
}

func transcriptText(messages []repository.Message, namesByID map[string]string) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", namesByID[m.AgentID], m.Content))
	}
	return strings.Join(lines, "\n")
}

// sanitizeMessage strips any name prefix the model prepends, repeatedly
// until none match, then removes one pair of wrapping quotes.
func sanitizeMessage(raw, speakerName, partnerName string) string {
	clean := strings.TrimSpace(raw)
	prefixes := []string{
		speakerName + ":",
		partnerName + ":",
		"You:",
	}
	for changed := true; changed; {
		changed = false
		for _, prefix := range prefixes {
			if strings.HasPrefix(clean, prefix) {
				clean = strings.TrimSpace(clean[len(prefix):])
				changed = true
			}
		}
	}
	if len(clean) >= 2 && strings.HasPrefix(clean, `"`) && strings.HasSuffix(clean, `"`) {
		clean = clean[1 : len(clean)-1]
	}
	return clean
}
