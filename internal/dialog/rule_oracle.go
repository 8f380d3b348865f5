package dialog

import (
	"context"
	"fmt"
	"strings"

	"prescreen/internal/session"
)

// RuleOracle is the deterministic lexicon-based oracle tier. It keeps the
// whole core runnable (CLI, scenarios, tests) without a language model, and
// it is trivially idempotent: the same answer text always yields the same
// classification. Classification quality is out of scope; the rules only
// need to be unambiguous.
type RuleOracle struct{}

var yesMarkers = []string{
	"yes", "yeah", "yep", "sure", "of course", "definitely", "certainly",
	"absolutely", "i do", "i can", "i am", "i have", "correct", "that's right",
	"ok", "okay", "fine", "sounds good",
}

var noMarkers = []string{
	"no", "nope", "not really", "i don't", "i dont", "i can't", "i cant",
	"i cannot", "i haven't", "i havent", "never", "unfortunately not",
}

var recruiterMarkers = []string{
	"recruiter", "real person", "human", "speak to someone", "talk to a person",
}

var voicemailMarkers = []string{
	"voicemail", "after the beep", "leave a message", "not available right now",
	"answering machine",
}

var declineMarkers = []string{
	"not interested", "no time", "don't call", "stop calling", "busy right now",
	"can't talk",
}

var noConsentMarkers = []string{
	"don't record", "do not record", "no recording", "without recording",
}

var questionStarts = []string{
	"what", "why", "how", "when", "which", "where", "does", "do you mean",
	"is that", "is it",
}

var cannotAttendMarkers = []string{
	"can't come to the office", "cannot come to the office", "can't travel",
	"cannot travel", "can't attend", "cannot attend", "not able to come",
}

var noSlotMarkers = []string{
	"none of those", "none of these", "doesn't work", "dont work", "don't work",
	"no good", "another day", "different day", "other days",
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '\'', r == '?':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// hasMarker reports whether any marker occurs in the normalized text on word
// boundaries.
func hasMarker(text string, markers []string) bool {
	padded := " " + strings.ReplaceAll(normalize(text), "?", "") + " "
	for _, m := range markers {
		if strings.Contains(padded, " "+m+" ") {
			return true
		}
	}
	return false
}

// overlaps reports whether answer and prompt share at least one word longer
// than three characters. Used to split unclear (on topic, unparseable) from
// irrelevant (off topic). The question mark is stripped like in hasMarker:
// a prompt's final word must still match the candidate's unpunctuated echo.
func overlaps(answer, prompt string) bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ReplaceAll(normalize(prompt), "?", "")) {
		if len(w) > 3 {
			words[w] = true
		}
	}
	for _, w := range strings.Fields(strings.ReplaceAll(normalize(answer), "?", "")) {
		if words[w] {
			return true
		}
	}
	return false
}

func isQuestion(text string) bool {
	n := normalize(text)
	if strings.HasSuffix(strings.TrimSpace(text), "?") {
		return true
	}
	for _, s := range questionStarts {
		if strings.HasPrefix(n, s+" ") || n == s {
			return true
		}
	}
	return false
}

func (RuleOracle) ClassifyGreeting(_ context.Context, answer string, pc PromptContext) (GreetingReading, error) {
	var reading GreetingReading
	switch {
	case hasMarker(answer, voicemailMarkers):
		reading.Verdict = GreetVoicemail
	case hasMarker(answer, recruiterMarkers):
		reading.Verdict = GreetRecruiter
	case hasMarker(answer, declineMarkers) || hasMarker(answer, noMarkers):
		reading.Verdict = GreetDeclined
	case hasMarker(answer, yesMarkers):
		reading.Verdict = GreetReady
	case overlaps(answer, "time talk call interview questions minutes"):
		reading.Verdict = GreetUnclear
	default:
		reading.Verdict = GreetIrrelevant
	}
	if pc.RequireConsent {
		switch {
		case hasMarker(answer, noConsentMarkers):
			v := false
			reading.Consent = &v
		case reading.Verdict == GreetReady:
			v := true
			reading.Consent = &v
		}
	}
	return reading, nil
}

func (RuleOracle) ClassifyKnockout(_ context.Context, q session.KnockoutQuestion, answer string, _ []QA) (KnockoutReading, error) {
	switch {
	case hasMarker(answer, recruiterMarkers):
		return KnockoutReading{Verdict: VerdictRecruiter, Summary: "candidate asked for a recruiter"}, nil
	case isQuestion(answer):
		r := KnockoutReading{Verdict: VerdictClarification, Summary: answer}
		if q.Context == "" {
			// Nothing to answer from; keep the question for the recruiter.
			r.Note = answer
		}
		return r, nil
	}
	yes, no := hasMarker(answer, yesMarkers), hasMarker(answer, noMarkers)
	switch {
	case yes && !no:
		return KnockoutReading{Verdict: VerdictPass, Summary: answer}, nil
	case no && !yes:
		return KnockoutReading{Verdict: VerdictFail, Summary: answer}, nil
	case overlaps(answer, q.Prompt):
		return KnockoutReading{Verdict: VerdictUnclear, Summary: answer}, nil
	default:
		return KnockoutReading{Verdict: VerdictIrrelevant, Summary: answer}, nil
	}
}

func (RuleOracle) ClassifyOpen(_ context.Context, _ session.OpenQuestion, answer string) (string, error) {
	summary := strings.TrimSpace(answer)
	if len(summary) > 240 {
		summary = summary[:240]
	}
	return summary, nil
}

func (RuleOracle) ClassifyAffirmation(_ context.Context, prompt, answer string) (Affirmation, error) {
	yes, no := hasMarker(answer, yesMarkers), hasMarker(answer, noMarkers)
	switch {
	case yes && !no:
		return AffirmYes, nil
	case no && !yes:
		return AffirmNo, nil
	case overlaps(answer, prompt):
		return AffirmUnclear, nil
	default:
		return AffirmIrrelevant, nil
	}
}

func (RuleOracle) ClassifySlots(_ context.Context, proposals []string, answer string) (SlotReading, error) {
	if hasMarker(answer, cannotAttendMarkers) {
		return SlotReading{Verdict: SlotCannotAttend, Preference: strings.TrimSpace(answer)}, nil
	}
	ordinals := [][]string{
		{"first", "1", "one"},
		{"second", "2", "two"},
		{"third", "3", "three"},
		{"fourth", "4", "four"},
	}
	for i, words := range ordinals {
		if i < len(proposals) && hasMarker(answer, words) {
			return SlotReading{Verdict: SlotAccepted, Index: i}, nil
		}
	}
	// A named weekday that matches one of the proposals counts as acceptance.
	for i, p := range proposals {
		for _, w := range strings.Fields(normalize(p)) {
			if len(w) > 3 && hasMarker(answer, []string{w}) && hasMarker(answer, yesMarkers) {
				return SlotReading{Verdict: SlotAccepted, Index: i}, nil
			}
		}
	}
	if hasMarker(answer, noSlotMarkers) || hasMarker(answer, noMarkers) {
		return SlotReading{Verdict: SlotNone, Preference: strings.TrimSpace(answer)}, nil
	}
	if hasMarker(answer, yesMarkers) {
		// Agreement without picking a slot.
		return SlotReading{Verdict: SlotUnclear}, nil
	}
	if overlaps(answer, strings.Join(proposals, " ")+" monday tuesday wednesday thursday friday morning afternoon week") {
		return SlotReading{Verdict: SlotNone, Preference: strings.TrimSpace(answer)}, nil
	}
	return SlotReading{Verdict: SlotIrrelevant}, nil
}

func (RuleOracle) Compose(_ context.Context, intent Intent, pc PromptContext) (string, error) {
	return composeTemplate(intent, pc), nil
}

// composeTemplate is the canned-wording composer. It doubles as the degraded
// path when a remote oracle cannot compose (see Reliable).
func composeTemplate(intent Intent, pc PromptContext) string {
	switch intent {
	case IntentGreeting:
		greeting := fmt.Sprintf("Hello %s, I'm calling about your application for the %s position. Do you have a few minutes for some quick questions?", pc.CandidateName, pc.JobTitle)
		if pc.RequireConsent {
			greeting += " This call is recorded for quality purposes; please say so if you object."
		}
		return greeting
	case IntentAskKnockout:
		return pc.Knockout.Prompt
	case IntentRepromptYesNo:
		return fmt.Sprintf("Sorry, I need a simple yes or no: %s", pc.Knockout.Prompt)
	case IntentConfirmFail:
		return fmt.Sprintf("So, just to confirm: your answer to \"%s\" is no, is that right?", pc.Knockout.Prompt)
	case IntentClarify:
		if pc.Knockout != nil && pc.Knockout.Context != "" {
			return fmt.Sprintf("%s So, %s", pc.Knockout.Context, pc.Knockout.Prompt)
		}
		return fmt.Sprintf("Good question, I'll note it for the recruiter. For now: %s", pc.Knockout.Prompt)
	case IntentNoteAck:
		return "I've noted that for the recruiter."
	case IntentSilenceProbe:
		return "Are you still there?"
	case IntentAskOpen:
		return pc.Open.Prompt
	case IntentAlternative:
		return "That's unfortunate, but we may have other openings that fit. Are you interested in hearing about alternatives?"
	case IntentProposeSlots:
		return fmt.Sprintf("Let's plan a short interview at our %s office. I have these options: %s. Would one of those work?", pc.OfficeLocation, strings.Join(pc.Slots, "; "))
	case IntentAskPreference:
		return "No problem. Which days would suit you better?"
	case IntentConfirmSlot:
		return fmt.Sprintf("Great, I've booked %s at %s, %s. You'll receive a confirmation shortly.", pc.Slots[0], pc.OfficeLocation, pc.OfficeAddress)
	case IntentExistingBooking:
		return fmt.Sprintf("I see you already have an interview scheduled on %s; we'll keep that appointment.", pc.BookingDate)
	case IntentClosing:
		return closingFor(pc.Outcome)
	}
	return ""
}

func closingFor(outcome session.Outcome) string {
	switch outcome {
	case session.OutcomeCompleted:
		return "Thanks for your time, you'll hear from us soon. Goodbye!"
	case session.OutcomeUnclear:
		return "I couldn't quite get what I needed today; a recruiter will follow up with you. Goodbye!"
	case session.OutcomeIrrelevant:
		return "I don't think this is going anywhere today. We'll leave it here. Goodbye."
	case session.OutcomeEscalated:
		return "Of course, I'll have a recruiter contact you as soon as possible. Goodbye!"
	case session.OutcomeNotInterested:
		return "Understood, thanks for letting us know. All the best!"
	case session.OutcomeKnockoutFailed:
		return "Thanks for your honesty; unfortunately this role isn't a match. Goodbye!"
	default:
		return "Thanks for your time. Goodbye!"
	}
}
