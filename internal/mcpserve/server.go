// Package mcpserve exposes the screening core over MCP stdio. The MCP client
// (typically an LLM operator relaying a live phone conversation) drives one
// session at a time: it starts the session, reads the agent utterances to the
// candidate, and submits the candidate's turns back.
package mcpserve

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"prescreen/internal/dialog"
	"prescreen/internal/interview"
	"prescreen/internal/logging"
	"prescreen/internal/schedule"
	"prescreen/internal/session"
	"prescreen/internal/store"
)

// Server wraps the MCP SDK server and manages one live screening session.
type Server struct {
	MCPServer *sdkmcp.Server
	Store     store.Store

	mu   sync.Mutex
	sess *liveSession
	log  *slog.Logger
}

// liveSession is one session goroutine and its candidate-side pipe.
type liveSession struct {
	id     string
	pipe   *dialog.Pipe
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	rec *session.Record
}

func (ls *liveSession) finished() bool {
	select {
	case <-ls.done:
		return true
	default:
		return false
	}
}

func (ls *liveSession) record() *session.Record {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.rec
}

// NewServer creates a prescreen MCP server with the session tools registered.
// st may be nil; records are then only returned over the protocol.
func NewServer(version string, st store.Store) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(
			&sdkmcp.Implementation{Name: "prescreen", Version: version},
			nil,
		),
		Store: st,
		log:   logging.New("mcpserve"),
	}
	s.registerTools()
	return s
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "start_session",
		Description: "Start a screening session from an input file or inline questions. Returns the session ID and the opening agent utterances.",
	}, s.handleStartSession)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "fetch_utterances",
		Description: "Fetch agent utterances buffered since the last fetch. Returns done=true with the outcome once the session is terminal.",
	}, s.handleFetchUtterances)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "submit_turn",
		Description: "Submit one candidate turn (or an explicit silence) and return the agent's reaction.",
	}, s.handleSubmitTurn)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "hangup",
		Description: "Report that the candidate hung up. The session finalizes with its partial results.",
	}, s.handleHangup)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_result",
		Description: "Get the final session record once the session is terminal.",
	}, s.handleGetResult)
}

// --- Tool input/output types ---

type startSessionInput struct {
	InputPath string `json:"input_path,omitempty" jsonschema:"path to a session input YAML file"`

	CallID        string                     `json:"call_id,omitempty" jsonschema:"call identifier (defaults to a fresh UUID)"`
	CandidateName string                     `json:"candidate_name,omitempty" jsonschema:"candidate name, required when no input_path"`
	JobTitle      string                     `json:"job_title,omitempty" jsonschema:"vacancy title, required when no input_path"`
	Office        string                     `json:"office_location,omitempty" jsonschema:"interview office city"`
	Knockouts     []session.KnockoutQuestion `json:"knockout_questions,omitempty" jsonschema:"yes/no eligibility questions"`
	OpenQuestions []session.OpenQuestion     `json:"open_questions,omitempty" jsonschema:"free-text questions"`
	Escalation    bool                       `json:"allow_escalation,omitempty" jsonschema:"allow handing off to a recruiter"`
}

type startSessionOutput struct {
	SessionID  string   `json:"session_id"`
	Utterances []string `json:"utterances"`
}

type fetchUtterancesInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from start_session"`
}

type turnOutput struct {
	Utterances []string `json:"utterances"`
	Done       bool     `json:"done"`
	Outcome    string   `json:"outcome,omitempty"`
}

type submitTurnInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from start_session"`
	Text      string `json:"text,omitempty" jsonschema:"what the candidate said"`
	Silent    bool   `json:"silent,omitempty" jsonschema:"true when the candidate stayed silent"`
}

type hangupInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from start_session"`
}

type hangupOutput struct {
	OK bool `json:"ok"`
}

type getResultInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from start_session"`
}

type getResultOutput struct {
	Done   bool            `json:"done"`
	Record *session.Record `json:"record,omitempty"`
}

// --- Tool handlers ---

func (s *Server) handleStartSession(_ context.Context, _ *sdkmcp.CallToolRequest, input startSessionInput) (*sdkmcp.CallToolResult, startSessionOutput, error) {
	in, err := buildInput(input)
	if err != nil {
		return nil, startSessionOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess != nil && !s.sess.finished() {
		return nil, startSessionOutput{}, fmt.Errorf("a session is already running (id=%s)", s.sess.id)
	}

	pipe := dialog.NewPipe()
	// The operator signals silence explicitly over submit_turn; the wall
	// clock between tool calls must not read as candidate silence.
	policy := session.DefaultPolicy()
	policy.SilenceTimeout = 10 * time.Minute
	policy.OpenSilenceTimeout = 10 * time.Minute

	var sink interview.ResultSink
	if s.Store != nil {
		sink = s.Store
	}
	ctrl := interview.New(interview.Config{
		Input:     in,
		Policy:    policy,
		Channel:   pipe,
		Oracle:    dialog.RuleOracle{},
		Directory: schedule.NewWeekdayDirectory(),
		Sink:      sink,
		SessionID: uuid.NewString(),
	})

	runCtx, cancel := context.WithCancel(context.Background())
	ls := &liveSession{id: uuid.NewString(), pipe: pipe, cancel: cancel, done: make(chan struct{})}
	s.sess = ls
	go func() {
		rec := ctrl.Run(runCtx)
		ls.mu.Lock()
		ls.rec = rec
		ls.mu.Unlock()
		close(ls.done)
	}()

	s.log.Info("session started", "id", ls.id, "call", in.CallID)
	return nil, startSessionOutput{
		SessionID:  ls.id,
		Utterances: awaitUtterances(ls),
	}, nil
}

func (s *Server) handleFetchUtterances(_ context.Context, _ *sdkmcp.CallToolRequest, input fetchUtterancesInput) (*sdkmcp.CallToolResult, turnOutput, error) {
	ls, err := s.getSession(input.SessionID)
	if err != nil {
		return nil, turnOutput{}, err
	}
	return nil, s.turnOutput(ls, ls.pipe.Drain()), nil
}

func (s *Server) handleSubmitTurn(_ context.Context, _ *sdkmcp.CallToolRequest, input submitTurnInput) (*sdkmcp.CallToolResult, turnOutput, error) {
	ls, err := s.getSession(input.SessionID)
	if err != nil {
		return nil, turnOutput{}, err
	}
	if ls.finished() {
		return nil, s.turnOutput(ls, ls.pipe.Drain()), nil
	}
	if input.Silent {
		ls.pipe.Silence()
	} else {
		if input.Text == "" {
			return nil, turnOutput{}, fmt.Errorf("text is required unless silent is set")
		}
		if err := ls.pipe.Reply(input.Text); err != nil {
			return nil, s.turnOutput(ls, ls.pipe.Drain()), nil
		}
	}
	return nil, s.turnOutput(ls, awaitUtterances(ls)), nil
}

func (s *Server) handleHangup(_ context.Context, _ *sdkmcp.CallToolRequest, input hangupInput) (*sdkmcp.CallToolResult, hangupOutput, error) {
	ls, err := s.getSession(input.SessionID)
	if err != nil {
		return nil, hangupOutput{}, err
	}
	ls.pipe.Hangup()
	<-ls.done
	s.log.Info("session hung up", "id", ls.id)
	return nil, hangupOutput{OK: true}, nil
}

func (s *Server) handleGetResult(_ context.Context, _ *sdkmcp.CallToolRequest, input getResultInput) (*sdkmcp.CallToolResult, getResultOutput, error) {
	ls, err := s.getSession(input.SessionID)
	if err != nil {
		return nil, getResultOutput{}, err
	}
	if !ls.finished() {
		return nil, getResultOutput{Done: false}, nil
	}
	return nil, getResultOutput{Done: true, Record: ls.record()}, nil
}

// --- Helpers ---

func (s *Server) getSession(id string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil, fmt.Errorf("no session started")
	}
	if id != "" && id != s.sess.id {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	return s.sess, nil
}

func (s *Server) turnOutput(ls *liveSession, utterances []string) turnOutput {
	out := turnOutput{Utterances: utterances, Done: ls.finished()}
	if rec := ls.record(); rec != nil {
		out.Outcome = string(rec.Outcome)
	}
	return out
}

// awaitUtterances polls briefly for the session goroutine's reaction so a
// submit_turn response usually carries the agent's next utterance already.
func awaitUtterances(ls *liveSession) []string {
	deadline := time.Now().Add(3 * time.Second)
	for {
		if out := ls.pipe.Drain(); len(out) > 0 {
			// One more beat: the controller may emit a follow-up right
			// after (clarify then re-ask).
			time.Sleep(50 * time.Millisecond)
			return append(out, ls.pipe.Drain()...)
		}
		if ls.finished() || time.Now().After(deadline) {
			return ls.pipe.Drain()
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func buildInput(input startSessionInput) (*session.Input, error) {
	if input.InputPath != "" {
		return session.LoadInput(input.InputPath)
	}
	if input.CandidateName == "" || input.JobTitle == "" {
		return nil, fmt.Errorf("candidate_name and job_title are required without input_path")
	}
	if len(input.Knockouts) == 0 {
		return nil, fmt.Errorf("at least one knockout question is required")
	}
	in := &session.Input{
		CallID:          input.CallID,
		CandidateName:   input.CandidateName,
		JobTitle:        input.JobTitle,
		OfficeLocation:  input.Office,
		Knockouts:       input.Knockouts,
		OpenQuestions:   input.OpenQuestions,
		AllowEscalation: input.Escalation,
	}
	if in.CallID == "" {
		in.CallID = uuid.NewString()
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}
