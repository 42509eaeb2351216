package conversation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OWDM/dental-ai-agent/internal/metrics"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// fallbackReply is the fixed apology returned when a handler fails or
// panics. The turn still completes with exactly one assistant message.
const fallbackReply = "I apologize, but I'm having trouble processing your request right now. Please try again, or call the clinic directly if it's urgent."

// Dispatcher runs the per-turn pipeline: classify and assess in
// parallel, merge the decision, execute the chosen handler, record the
// assistant turn. One invocation per inbound user message.
type Dispatcher struct {
	classifier  *Classifier
	guardrail   *Guardrail
	handlers    map[HandlerKind]Handler
	taskTimeout time.Duration
	logger      *logger.Logger
}

// NewDispatcher wires the pipeline. Every HandlerKind must have an entry
// in handlers; a missing handler falls back to the apology reply.
func NewDispatcher(classifier *Classifier, guardrail *Guardrail, handlers map[HandlerKind]Handler, taskTimeout time.Duration, log *logger.Logger) *Dispatcher {
	if taskTimeout <= 0 {
		taskTimeout = 15 * time.Second
	}
	return &Dispatcher{
		classifier:  classifier,
		guardrail:   guardrail,
		handlers:    handlers,
		taskTimeout: taskTimeout,
		logger:      log,
	}
}

// HandleTurn processes one user message against the session state and
// returns the assistant reply. The state gains exactly two turns: the
// user's message and the reply.
func (d *Dispatcher) HandleTurn(ctx context.Context, state *types.ConversationState, userText string) string {
	started := time.Now()
	state.AppendTurn(types.RoleUser, userText)

	intent, verdict := d.evaluate(ctx, state, userText)

	decision := Decide(state, intent, verdict)
	state.RecordIntent(decision.Intent)
	if decision.Escalate && !state.Escalated {
		state.Escalated = true
		metrics.EscalationsTotal.Inc()
		d.logger.WithSession(state.ID).WithField("reason", decision.Reason).Warn("Session escalated to human handoff")
	}
	metrics.TurnsTotal.WithLabelValues(string(decision.Intent)).Inc()

	reply := d.execute(ctx, state, decision)
	state.AppendTurn(types.RoleAssistant, reply)

	d.logger.Turn(state.ID, string(decision.Intent), state.Escalated, time.Since(started).Milliseconds())
	return reply
}

// evaluate runs intent classification and the sentiment guardrail
// concurrently, each under its own timeout. Neither can fail the turn:
// the classifier defaults to faq and the guardrail to the safe verdict.
func (d *Dispatcher) evaluate(ctx context.Context, state *types.ConversationState, userText string) (types.Intent, types.GuardrailVerdict) {
	intent := types.IntentFAQ
	verdict := types.SafeGuardrailVerdict()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		taskCtx, cancel := context.WithTimeout(gctx, d.taskTimeout)
		defer cancel()
		intent = d.classifier.Classify(taskCtx, state)
		return nil
	})
	g.Go(func() error {
		taskCtx, cancel := context.WithTimeout(gctx, d.taskTimeout)
		defer cancel()
		verdict = d.guardrail.Assess(taskCtx, userText)
		return nil
	})
	// Both goroutines always return nil; Wait is the join barrier.
	_ = g.Wait()

	return intent, verdict
}

// execute runs the decided handler with panic containment. Handler
// failure records the error on the session and yields the fallback
// apology.
func (d *Dispatcher) execute(ctx context.Context, state *types.ConversationState, decision Decision) (reply string) {
	handler, ok := d.handlers[decision.Handler]
	if !ok {
		d.logger.WithSession(state.ID).Errorf("No handler registered for %s", decision.Handler)
		state.RecordError(fmt.Errorf("missing handler %s", decision.Handler))
		return fallbackReply
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerErrorsTotal.WithLabelValues(handler.Name()).Inc()
			state.RecordError(fmt.Errorf("handler %s panicked: %v", handler.Name(), r))
			d.logger.WithSession(state.ID).Errorf("Handler %s panicked: %v", handler.Name(), r)
			reply = fallbackReply
		}
	}()

	out, err := handler.Handle(ctx, state)
	if err != nil {
		metrics.HandlerErrorsTotal.WithLabelValues(handler.Name()).Inc()
		state.RecordError(err)
		d.logger.WithSession(state.ID).Errorf("Handler %s failed: %v", handler.Name(), err)
		return fallbackReply
	}
	if out == "" {
		return fallbackReply
	}
	return out
}
