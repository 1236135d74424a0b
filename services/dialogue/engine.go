package dialogue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartsched/models"
	"smartsched/services/calendar"
	ai "smartsched/services/intelligence"
	"smartsched/services/scheduling"
	"smartsched/services/timeparse"
	"smartsched/utils"
)

// anchorSearchDays bounds the named-event lookup around the current time.
const anchorSearchDays = 30

// TurnResult is what one processed turn hands back to the transport layer.
type TurnResult struct {
	SessionID string                   `json:"sessionId"`
	Reply     string                   `json:"reply"`
	Intent    string                   `json:"intent"`
	State     models.SessionState      `json:"state"`
	Question  string                   `json:"question,omitempty"`
	Options   []models.SlotOption      `json:"options,omitempty"`
	Selected  *models.SlotOption       `json:"selected,omitempty"`
	Request   models.SchedulingRequest `json:"request"`
}

// Engine drives the negotiation state machine. Each session is mutated by at
// most one turn at a time; concurrent turns against the same session
// serialize on a per-session lock.
type Engine struct {
	store     SessionStore
	extractor ai.Extractor
	parser    *timeparse.Parser
	matcher   *scheduling.SlotMatcher
	cal       calendar.Provider

	// Now is swappable for tests.
	Now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(store SessionStore, extractor ai.Extractor, parser *timeparse.Parser, matcher *scheduling.SlotMatcher, cal calendar.Provider) *Engine {
	return &Engine{
		store:     store,
		extractor: extractor,
		parser:    parser,
		matcher:   matcher,
		cal:       cal,
		Now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (e *Engine) sessionLock(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// releaseLock drops a terminal session's lock entry so the map does not grow
// with every finished negotiation. A late waiter on the old mutex only ever
// observes the terminal state and fails fast.
func (e *Engine) releaseLock(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.locks, id)
}

// CreateSession starts a fresh negotiation for the user.
func (e *Engine) CreateSession(ctx context.Context, userID string) (*models.DialogueSession, error) {
	now := e.Now()
	sess := &models.DialogueSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     models.StateCollecting,
		Request:   models.SchedulingRequest{Status: models.StatusCollecting},
		Anchors:   make(map[string]models.Interval),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (e *Engine) GetSession(ctx context.Context, id string) (*models.DialogueSession, error) {
	return e.store.Get(ctx, id)
}

// Abandon marks a session abandoned. Used by the DELETE surface.
func (e *Engine) Abandon(ctx context.Context, id string) error {
	return e.abandon(ctx, id, false)
}

// TimeOut abandons a session for inactivity; later turns get
// SessionTimedOutError instead of the generic closed error.
func (e *Engine) TimeOut(ctx context.Context, id string) error {
	return e.abandon(ctx, id, true)
}

func (e *Engine) abandon(ctx context.Context, id string, timedOut bool) error {
	lock := e.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.store.Get(ctx, id)
	if err != nil {
		e.releaseLock(id)
		return err
	}
	if sess.State.Terminal() {
		e.releaseLock(id)
		return nil
	}
	sess.State = models.StateAbandoned
	sess.TimedOut = timedOut
	sess.UpdatedAt = e.Now()
	if err := e.store.Set(ctx, sess); err != nil {
		return err
	}
	e.releaseLock(id)
	return nil
}

// ProcessTurn runs one user utterance through the state machine and persists
// the updated session.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, userInput string) (*TurnResult, error) {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.store.Get(ctx, sessionID)
	if err != nil {
		e.releaseLock(sessionID)
		return nil, err
	}
	if sess.State.Terminal() {
		e.releaseLock(sessionID)
		if sess.TimedOut {
			return nil, &SessionTimedOutError{SessionID: sessionID}
		}
		return nil, &SessionClosedError{SessionID: sessionID, State: string(sess.State)}
	}

	sig, err := e.extractor.Extract(ctx, userInput)
	if err != nil {
		// Extraction never blocks the turn; treat as smalltalk.
		utils.GetLogger().Warn("extraction failed", zap.Error(err))
		sig = models.UtteranceSignal{Intent: models.IntentChat}
	}

	fromState := sess.State
	priorQuestion := sess.LastQuestion
	reply := e.dispatch(ctx, sess, sig, userInput)

	question := ""
	if strings.HasSuffix(strings.TrimSpace(reply), "?") {
		question = reply
	}
	sess.LastQuestion = question

	now := e.Now()
	sess.History = append(sess.History, models.DialogueTurn{
		UserInput: userInput,
		Signal:    &sig,
		Question:  priorQuestion,
		Reply:     reply,
		FromState: fromState,
		ToState:   sess.State,
		At:        now,
	})
	sess.UpdatedAt = now

	if err := e.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if sess.State.Terminal() {
		e.releaseLock(sess.ID)
	}

	return &TurnResult{
		SessionID: sess.ID,
		Reply:     reply,
		Intent:    sig.Intent,
		State:     sess.State,
		Question:  question,
		Options:   sess.LastOffer,
		Selected:  sess.Selected,
		Request:   sess.Request,
	}, nil
}

func (e *Engine) dispatch(ctx context.Context, sess *models.DialogueSession, sig models.UtteranceSignal, userInput string) string {
	switch sig.Intent {
	case models.IntentCancel:
		sess.State = models.StateAbandoned
		return cancelReply()

	case models.IntentSelect, models.IntentConfirm:
		return e.handleSelection(ctx, sess, sig, userInput)

	case models.IntentSchedule, models.IntentProvide:
		return e.handleConstraints(ctx, sess, sig, userInput)

	default:
		if sess.State == models.StateOffering && len(sess.LastOffer) > 0 {
			return offerReply(models.MatchResult{Options: sess.LastOffer, Relaxations: nil})
		}
		return chatNudgeReply(sess.Request)
	}
}

func (e *Engine) handleSelection(ctx context.Context, sess *models.DialogueSession, sig models.UtteranceSignal, userInput string) string {
	if sess.State != models.StateOffering || len(sess.LastOffer) == 0 {
		return "I haven't offered any times yet. " + nextQuestion(sess.Request)
	}

	var opt *models.SlotOption
	if sig.Intent == models.IntentConfirm && len(sess.LastOffer) == 1 {
		opt = &sess.LastOffer[0]
	} else {
		phrase := sig.SelectionPhrase
		if phrase == "" {
			phrase = userInput
		}
		var err error
		opt, err = resolveSelection(phrase, sess.LastOffer)
		if err != nil {
			ambErr := err.(*SelectionAmbiguousError)
			return selectionAmbiguousReply(ambErr.Matches)
		}
	}

	eventID, err := e.cal.CreateEvent(ctx, models.CalendarEvent{
		Summary: "Meeting",
		Start:   opt.Start,
		End:     opt.End,
	})
	if err != nil {
		utils.GetLogger().Error("event creation failed",
			zap.String("session", sess.ID), zap.Error(err))
		return "I couldn't reach the calendar to book that just now. Could you try confirming again in a moment?"
	}

	sess.Selected = opt
	sess.EventID = eventID
	sess.State = models.StateResolved
	sess.Request.Status = models.StatusResolved
	return confirmationReply(*opt)
}

func (e *Engine) handleConstraints(ctx context.Context, sess *models.DialogueSession, sig models.UtteranceSignal, userInput string) string {
	ref := e.Now()

	phrases := sig.TimePhrases
	if len(phrases) == 0 && sig.DurationPhrase != "" {
		phrases = []string{sig.DurationPhrase}
	}
	if len(phrases) == 0 {
		// A bare "let's schedule something" carries no constraints yet.
		sess.State = models.StateCollecting
		return "Happy to help. " + nextQuestion(sess.Request)
	}

	var constraints []models.TimeConstraint
	for _, phrase := range phrases {
		cs, err := e.parser.Parse(phrase, ref, sess.Anchors)
		if err != nil {
			if ambErr, ok := err.(*timeparse.AmbiguousError); ok {
				return ambiguousReply(ambErr.Interpretations)
			}
			if timeparse.IsUnrecognized(err) {
				if len(phrases) == 1 {
					return unrecognizedReply(phrase)
				}
				continue
			}
			utils.GetLogger().Warn("parse failed", zap.String("phrase", phrase), zap.Error(err))
			continue
		}
		constraints = append(constraints, cs...)
	}
	if len(constraints) == 0 {
		return unrecognizedReply(userInput)
	}

	merged, err := scheduling.Merge(sess.Request, constraints)
	if err != nil {
		if cerr, ok := err.(*scheduling.ContradictionError); ok {
			return contradictionReply(cerr.Reason)
		}
		utils.GetLogger().Error("constraint merge failed", zap.Error(err))
		return "Something went wrong applying that. Could you rephrase?"
	}
	sess.Request = merged

	// New constraints invalidate any standing offer.
	sess.LastOffer = nil
	sess.LastRelaxations = nil
	sess.Selected = nil

	if sess.Request.HasPendingAnchor() {
		if reply, done := e.resolveAnchors(ctx, sess, ref); done {
			return reply
		}
	}

	if sess.Request.Status != models.StatusReady {
		sess.State = models.StateCollecting
		return "Got it. " + nextQuestion(sess.Request)
	}

	return e.resolveAndOffer(ctx, sess)
}

// resolveAnchors looks up pending named events on the calendar. It reports
// done=true with a user-facing reply when the turn should stop here.
func (e *Engine) resolveAnchors(ctx context.Context, sess *models.DialogueSession, ref time.Time) (string, bool) {
	window := models.Interval{
		Start: ref.AddDate(0, 0, -anchorSearchDays),
		End:   ref.AddDate(0, 0, anchorSearchDays),
	}
	for _, rule := range sess.Request.Anchors {
		if !rule.Pending() {
			continue
		}
		iv, found, err := e.cal.ResolveNamedEvent(ctx, rule.Ref, window)
		if err != nil {
			utils.GetLogger().Warn("named event lookup failed",
				zap.String("ref", rule.Ref), zap.Error(err))
			sess.State = models.StateCollecting
			return "I couldn't reach the calendar to look that up. Could you try again in a moment?", true
		}
		if !found {
			sess.State = models.StateCollecting
			return pendingAnchorQuestion(sess.Request), true
		}
		if sess.Anchors == nil {
			sess.Anchors = make(map[string]models.Interval)
		}
		sess.Anchors[rule.Ref] = iv
		sess.Request = scheduling.ResolveAnchor(sess.Request, rule.Ref, iv)
	}
	return "", false
}

func (e *Engine) resolveAndOffer(ctx context.Context, sess *models.DialogueSession) string {
	sess.State = models.StateResolving

	result, err := e.matcher.Match(ctx, sess.Request)
	if err != nil {
		sess.State = models.StateCollecting
		if scheduling.IsCalendarUnavailable(err) {
			return "I'm having trouble reaching the calendar right now. Give me a moment and tell me again."
		}
		utils.GetLogger().Error("slot match failed", zap.String("session", sess.ID), zap.Error(err))
		return "Something went wrong while searching for times. Could you try again?"
	}

	// The calendar round trip can outlive the session; drop results rather
	// than resurrect an abandoned conversation.
	if fresh, ferr := e.store.Get(ctx, sess.ID); ferr == nil && fresh.State == models.StateAbandoned {
		sess.State = models.StateAbandoned
		return "This scheduling session was closed in the meantime."
	}

	if len(result.Options) == 0 {
		sess.State = models.StateCollecting
		return noOptionsReply()
	}

	sess.State = models.StateOffering
	sess.LastOffer = result.Options
	sess.LastRelaxations = result.Relaxations
	return offerReply(result)
}
