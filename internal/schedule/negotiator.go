package schedule

import (
	"context"
	"errors"
	"log/slog"

	"prescreen/internal/dialog"
	"prescreen/internal/logging"
	"prescreen/internal/session"
)

// Abort explains why negotiation stopped without a normal finish.
type Abort int

const (
	AbortNone Abort = iota
	AbortIrrelevanceLimit
	AbortSilence
	AbortDisconnected
	AbortCancelled
)

// Trace receives both sides of the conversation for the transcript.
type Trace func(role, text string)

// Result is the negotiation outcome. Exactly one of Slot or Preference is
// meaningful on a normal finish: a booked slot, or the candidate's stated
// preference for manual follow-up (soft success).
type Result struct {
	Slot            *Slot
	Preference      string
	Abort           Abort
	IrrelevantTurns int
}

// Negotiator proposes timeslots, retries with alternate days, and stops after
// a bounded number of failed lookups.
type Negotiator struct {
	Channel   dialog.Channel
	Oracle    dialog.Oracle
	Directory Directory
	Policy    session.Policy

	// SessionID identifies this session for booking calls.
	SessionID string

	// IrrelevanceBudget is the remaining session irrelevance budget.
	IrrelevanceBudget int

	Trace Trace
	Log   *slog.Logger
}

// Run negotiates one slot. Each lookup proposes up to Policy.SlotProposals
// slots; when none fit, the candidate is asked for preferred days and the
// directory is re-queried with that hint (one failed lookup). After
// Policy.MaxSlotLookups lookups the negotiation soft-finishes with only the
// recorded preference. A booking conflict (slot raced away) re-queries
// instead of assuming success. A statement that the candidate cannot attend
// an office at all is captured verbatim and stops negotiation immediately.
func (n *Negotiator) Run(ctx context.Context, pc dialog.PromptContext) Result {
	log := n.Log
	if log == nil {
		log = logging.New("schedule")
	}

	var res Result

	trace := func(role, text string) {
		if n.Trace != nil {
			n.Trace(role, text)
		}
	}
	say := func(intent dialog.Intent, pc dialog.PromptContext) bool {
		text, err := n.Oracle.Compose(ctx, intent, pc)
		if err != nil || text == "" {
			log.Warn("compose failed", "intent", string(intent), "error", err)
			return true
		}
		trace("agent", text)
		if err := n.Channel.Send(ctx, text); err != nil {
			return false
		}
		return true
	}
	await := func() (string, Abort) {
		silences := 0
		for {
			ev := n.Channel.Await(ctx, n.Policy.SilenceTimeout)
			switch ev.Kind {
			case dialog.KindTurn:
				trace("candidate", ev.Turn.Text)
				return ev.Turn.Text, AbortNone
			case dialog.KindSilence:
				silences++
				if silences >= 2 {
					return "", AbortSilence
				}
				if !say(dialog.IntentSilenceProbe, pc) {
					return "", AbortDisconnected
				}
			case dialog.KindDisconnected:
				return "", AbortDisconnected
			case dialog.KindCancelled:
				return "", AbortCancelled
			}
		}
	}

	hint := DayHint{}
	lookups := 0
	conflicts := 0

	for lookups < n.Policy.MaxSlotLookups {
		slots, err := n.Directory.ListSlots(ctx, hint, n.Policy.SlotProposals)
		if err != nil || len(slots) == 0 {
			log.Warn("slot lookup failed", "error", err, "hint", hint.Raw)
			lookups++
			if ab := n.askPreference(&res, say, await, &hint, pc); ab != AbortNone {
				res.Abort = ab
				return res
			}
			continue
		}
		lookups++

		spoken := make([]string, len(slots))
		for i, s := range slots {
			spoken[i] = s.Spoken
		}
		propose := pc
		propose.Slots = spoken
		if !say(dialog.IntentProposeSlots, propose) {
			res.Abort = AbortDisconnected
			return res
		}

		turns := 0
	batch:
		for {
			answer, ab := await()
			if ab != AbortNone {
				res.Abort = ab
				return res
			}
			turns++
			if turns > n.Policy.MaxTurnsPerQuestion {
				break batch
			}

			reading, _ := n.Oracle.ClassifySlots(ctx, spoken, answer)
			switch reading.Verdict {
			case dialog.SlotAccepted:
				if reading.Index < 0 || reading.Index >= len(slots) {
					continue // defect in the reading; ask again
				}
				chosen := slots[reading.Index]
				err := n.Directory.Book(ctx, chosen, n.SessionID)
				if errors.Is(err, ErrConflict) {
					// Raced away between proposal and confirmation:
					// re-query rather than assume success.
					conflicts++
					log.Info("slot conflict, re-querying", "slot", chosen.Key())
					if conflicts <= 2 {
						lookups-- // a conflict re-query is not a failed lookup
					}
					break batch
				}
				if err != nil {
					log.Warn("booking failed", "slot", chosen.Key(), "error", err)
					break batch
				}
				confirm := pc
				confirm.Slots = []string{chosen.Spoken}
				if !say(dialog.IntentConfirmSlot, confirm) {
					res.Abort = AbortDisconnected
					return res
				}
				res.Slot = &chosen
				return res

			case dialog.SlotCannotAttend:
				res.Preference = reading.Preference
				return res

			case dialog.SlotNone:
				res.Preference = reading.Preference
				if ab := n.askPreference(&res, say, await, &hint, pc); ab != AbortNone {
					res.Abort = ab
					return res
				}
				break batch

			case dialog.SlotIrrelevant:
				res.IrrelevantTurns++
				if res.IrrelevantTurns >= n.IrrelevanceBudget {
					res.Abort = AbortIrrelevanceLimit
					return res
				}
				if !say(dialog.IntentProposeSlots, propose) {
					res.Abort = AbortDisconnected
					return res
				}

			default: // unclear: re-offer the same batch once per turn
				if !say(dialog.IntentProposeSlots, propose) {
					res.Abort = AbortDisconnected
					return res
				}
			}
		}
	}

	// Lookups exhausted: soft success with the last stated preference.
	// A run that never reached an ask yet, such as a string of booking
	// conflicts, still records what the candidate wants.
	if res.Slot == nil && res.Preference == "" {
		if ab := n.askPreference(&res, say, await, &hint, pc); ab != AbortNone {
			res.Abort = ab
		}
	}
	return res
}

// askPreference asks for preferred days and folds the reply into the hint
// and the recorded preference.
func (n *Negotiator) askPreference(res *Result,
	say func(dialog.Intent, dialog.PromptContext) bool,
	await func() (string, Abort),
	hint *DayHint, pc dialog.PromptContext,
) Abort {
	if !say(dialog.IntentAskPreference, pc) {
		return AbortDisconnected
	}
	answer, ab := await()
	if ab != AbortNone {
		return ab
	}
	res.Preference = answer
	hint.Raw = answer
	hint.Days = ParsePreferredDays(answer)
	return AbortNone
}
