package mcpserve

import (
	"context"
	"strings"
	"testing"

	"prescreen/internal/session"
	"prescreen/internal/store"
)

func TestBuildInput(t *testing.T) {
	_, err := buildInput(startSessionInput{CandidateName: "Alex"})
	if err == nil || !strings.Contains(err.Error(), "job_title") {
		t.Errorf("missing job title not rejected: %v", err)
	}

	_, err = buildInput(startSessionInput{CandidateName: "Alex", JobTitle: "Operative"})
	if err == nil || !strings.Contains(err.Error(), "knockout") {
		t.Errorf("missing knockouts not rejected: %v", err)
	}

	in, err := buildInput(startSessionInput{
		CandidateName: "Alex",
		JobTitle:      "Operative",
		Knockouts: []session.KnockoutQuestion{
			{ID: "k1", Prompt: "Can you lift 20kg?"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if in.CallID == "" {
		t.Error("call ID not defaulted")
	}
}

func startTestSession(t *testing.T, s *Server) string {
	t.Helper()
	_, out, err := s.handleStartSession(context.Background(), nil, startSessionInput{
		CandidateName: "Alex",
		JobTitle:      "Warehouse Operative",
		Knockouts: []session.KnockoutQuestion{
			{ID: "k_forklift", Prompt: "Do you have a valid forklift certificate?"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Utterances) == 0 {
		t.Fatal("no greeting from the freshly started session")
	}
	return out.SessionID
}

func TestSessionLifecycle(t *testing.T) {
	st := store.NewMemStore()
	s := NewServer("test", st)
	id := startTestSession(t, s)

	_, out, err := s.handleSubmitTurn(context.Background(), nil, submitTurnInput{
		SessionID: id, Text: "Yes, this is a good time.",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Utterances) == 0 {
		t.Error("no knockout question after the greeting reply")
	}

	_, out, err = s.handleSubmitTurn(context.Background(), nil, submitTurnInput{
		SessionID: id, Text: "Yes, I have one.",
	})
	if err != nil {
		t.Fatal(err)
	}

	_, hout, err := s.handleHangup(context.Background(), nil, hangupInput{SessionID: id})
	if err != nil || !hout.OK {
		t.Fatalf("hangup: %v", err)
	}

	_, rout, err := s.handleGetResult(context.Background(), nil, getResultInput{SessionID: id})
	if err != nil {
		t.Fatal(err)
	}
	if !rout.Done || rout.Record == nil {
		t.Fatal("no result after hangup")
	}
	// The store received the same finished session.
	stored, err := st.Get(context.Background(), rout.Record.CallID)
	if err != nil || stored == nil {
		t.Errorf("session not persisted: %v", err)
	}
}

func TestConcurrentSessionRejected(t *testing.T) {
	s := NewServer("test", nil)
	id := startTestSession(t, s)

	_, _, err := s.handleStartSession(context.Background(), nil, startSessionInput{
		CandidateName: "Sam",
		JobTitle:      "Operative",
		Knockouts:     []session.KnockoutQuestion{{ID: "k1", Prompt: "Can you lift 20kg?"}},
	})
	if err == nil {
		t.Error("second concurrent session not rejected")
	}

	if _, _, err := s.handleHangup(context.Background(), nil, hangupInput{SessionID: id}); err != nil {
		t.Fatal(err)
	}
}

func TestSubmitTurn_RequiresTextOrSilent(t *testing.T) {
	s := NewServer("test", nil)
	id := startTestSession(t, s)
	defer s.handleHangup(context.Background(), nil, hangupInput{SessionID: id})

	if _, _, err := s.handleSubmitTurn(context.Background(), nil, submitTurnInput{SessionID: id}); err == nil {
		t.Error("empty turn accepted")
	}
}

func TestGetSession_UnknownID(t *testing.T) {
	s := NewServer("test", nil)
	if _, err := s.getSession("nope"); err == nil {
		t.Error("expected an error before any session starts")
	}
}
