package session

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestPolicyNormalize_ZeroValueGetsDefaults(t *testing.T) {
	if diff := cmp.Diff(DefaultPolicy(), Policy{}.Normalize()); diff != "" {
		t.Errorf("normalized zero policy mismatch (-want +got):\n%s", diff)
	}
}

func TestPolicyNormalize_KeepsCallerFields(t *testing.T) {
	p := Policy{
		IrrelevanceLimit: 5,
		SilenceTimeout:   50 * time.Millisecond,
	}.Normalize()

	if p.IrrelevanceLimit != 5 {
		t.Errorf("IrrelevanceLimit = %d, want the caller's 5", p.IrrelevanceLimit)
	}
	if p.SilenceTimeout != 50*time.Millisecond {
		t.Errorf("SilenceTimeout = %v, want the caller's 50ms", p.SilenceTimeout)
	}
	// Unset fields come from the defaults.
	def := DefaultPolicy()
	if p.MaxTurnsPerQuestion != def.MaxTurnsPerQuestion {
		t.Errorf("MaxTurnsPerQuestion = %d, want default %d", p.MaxTurnsPerQuestion, def.MaxTurnsPerQuestion)
	}
	if len(p.AlternativeQuestions) != len(def.AlternativeQuestions) {
		t.Errorf("AlternativeQuestions len = %d, want default %d", len(p.AlternativeQuestions), len(def.AlternativeQuestions))
	}
}
