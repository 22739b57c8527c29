// Package conversation runs the scripted 16-turn date between a matched
// pair and scores the result.
package conversation

const (
	// TotalTurns is the fixed length of every conversation.
	TotalTurns = 16
	// summaryInterval is how often the rolling summary is regenerated.
	summaryInterval = 4
	// contextWindow bounds how many prior messages each turn prompt sees.
	contextWindow = 6
	// revealIntervalSeconds spaces the presentation drip of messages.
	revealIntervalSeconds = 15
)

type Phase string

const (
	PhaseIcebreaker Phase = "icebreaker"
	PhaseDeeper     Phase = "deeper"
	PhaseRealTalk   Phase = "real_talk"
	PhaseClosing    Phase = "closing"
)

func phaseForTurn(turn int) Phase {
	switch {
	case turn <= 4:
		return PhaseIcebreaker
	case turn <= 8:
		return PhaseDeeper
	case turn <= 12:
		return PhaseRealTalk
	default:
		return PhaseClosing
	}
}

var phaseGuidance = map[Phase]string{
	PhaseIcebreaker: "FIRST MESSAGE. One sentence. Under 12 words ideally. " +
		"A question, a tease, a roast, or a weird observation. That's it. " +
		"No greetings, no emojis, no exclamation marks. Lowercase energy.",
	PhaseDeeper: "Mid-convo. 1-2 sentences max. Follow the thread or change it. " +
		"React genuinely — if there's chemistry, lean in. If they said something dumb, call it out.",
	PhaseRealTalk: "Go where the energy is. 2-3 sentences max. " +
		"If there's real chemistry, flirt harder and get personal. " +
		"If it's genuinely dead, acknowledge it. But don't manufacture boredom — if you're vibing, show it.",
	PhaseClosing: "Wrapping up. 1-2 sentences. Be honest about how this went. " +
		"Great date? Say so with enthusiasm. Mid date? Say it was mid. Don't overthink it.",
}

type turnParams struct {
	maxTokens   int
	temperature float64
}

// Output size and sampling heat rise toward the middle of the date and
// settle for the close.
var phaseParams = map[Phase]turnParams{
	PhaseIcebreaker: {maxTokens: 30, temperature: 0.85},
	PhaseDeeper:     {maxTokens: 50, temperature: 0.90},
	PhaseRealTalk:   {maxTokens: 60, temperature: 0.95},
	PhaseClosing:    {maxTokens: 45, temperature: 0.88},
}
