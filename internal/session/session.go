// Package session drives a learning session: topic to graph, graph to quiz,
// quiz to summary. Both the terminal UI and the HTTP API sit on top of one
// Controller.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/knowflow/internal/history"
	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/settings"
	"github.com/abhisek/knowflow/internal/skilltree"
)

// Generator produces learning content. *gateway.Gateway satisfies it.
type Generator interface {
	GenerateGraph(ctx context.Context, topic string) ([]skilltree.Node, error)
	GenerateQuiz(ctx context.Context, node skilltree.Node, topic string) ([]skilltree.Question, error)
	GenerateSummary(ctx context.Context, correct, total int, label string) (string, error)
}

// GeneratorFactory builds a Generator for cfg. It is called lazily on the
// first request after startup or after a config change.
type GeneratorFactory func(ctx context.Context, cfg llm.Config) (Generator, error)

// Options wires a Controller.
type Options struct {
	History      *history.Service
	Settings     *settings.Store
	NewGenerator GeneratorFactory
	Logger       *slog.Logger
}

// Controller owns the session state. One mutex guards it and is released
// while a generator call is in flight, so readers can observe Busy.
type Controller struct {
	mu    sync.Mutex
	state State
	gen   Generator

	history      *history.Service
	settings     *settings.Store
	newGenerator GeneratorFactory
	logger       *slog.Logger
	newID        func() string
}

// New loads the stored config and history and starts on the home view.
func New(ctx context.Context, opts Options) (*Controller, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		history:      opts.History,
		settings:     opts.Settings,
		newGenerator: opts.NewGenerator,
		logger:       logger,
		newID:        func() string { return "session_" + uuid.NewString() },
	}

	c.state = State{View: ViewHome, Config: opts.Settings.Load(ctx)}
	items, err := c.history.List(ctx)
	if err != nil {
		return nil, err
	}
	c.state.History = items
	return c, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// begin marks the controller busy after check passes. check runs under the
// lock and may read the state.
func (c *Controller) begin(status string, check func(*State) error) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Busy {
		return State{}, ErrBusy
	}
	if check != nil {
		if err := check(&c.state); err != nil {
			return State{}, err
		}
	}
	c.state.Busy = true
	c.state.StatusText = status
	c.state.Error = ""
	return c.state.clone(), nil
}

// end clears busy and records err for display.
func (c *Controller) end(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Busy = false
	c.state.StatusText = ""
	if err != nil {
		c.state.Error = err.Error()
	}
}

// update applies fn to the state under the lock, refusing while busy.
func (c *Controller) update(fn func(*State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Busy {
		return ErrBusy
	}
	return fn(&c.state)
}

// generator returns the cached generator, building one for the current
// config if needed.
func (c *Controller) generator(ctx context.Context) (Generator, error) {
	c.mu.Lock()
	gen, cfg := c.gen, c.state.Config
	c.mu.Unlock()
	if gen != nil {
		return gen, nil
	}

	gen, err := c.newGenerator(ctx, cfg)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	c.mu.Lock()
	if c.state.Config == cfg {
		c.gen = gen
	}
	c.mu.Unlock()
	return gen, nil
}

func inView(views ...View) func(*State) error {
	return func(s *State) error {
		for _, v := range views {
			if s.View == v {
				return nil
			}
		}
		return ErrInvalidTransition
	}
}

// SubmitTopic generates a graph for topic and starts a new session on it.
// A blank topic is ignored.
func (c *Controller) SubmitTopic(ctx context.Context, topic string) (err error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	if _, err := c.begin("Generating knowledge graph...", inView(ViewHome)); err != nil {
		return err
	}
	defer func() { c.end(err) }()

	gen, err := c.generator(ctx)
	if err != nil {
		return err
	}
	nodes, err := gen.GenerateGraph(ctx, topic)
	if err != nil {
		return err
	}

	id := c.newID()
	c.mu.Lock()
	c.state.Topic = topic
	c.state.SessionID = id
	c.state.Nodes = nodes
	c.state.ActiveNodeID = ""
	c.state.Quiz = nil
	c.state.Summary = nil
	c.state.View = ViewGraph
	c.mu.Unlock()

	c.saveHistory(ctx, id, topic, nodes)
	return nil
}

// OpenHistory loads a stored session without calling the provider.
func (c *Controller) OpenHistory(ctx context.Context, id string) error {
	if err := c.update(inView(ViewHome)); err != nil {
		return err
	}
	item, err := c.history.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.update(func(s *State) error {
		s.Topic = item.Topic
		s.SessionID = item.ID
		s.Nodes = item.Nodes
		s.ActiveNodeID = ""
		s.Quiz = nil
		s.Summary = nil
		s.Error = ""
		s.View = ViewGraph
		return nil
	})
}

// DeleteHistory removes a history entry. The in-memory session, if it is
// the deleted one, stays open.
func (c *Controller) DeleteHistory(ctx context.Context, id string) error {
	if err := c.update(func(*State) error { return nil }); err != nil {
		return err
	}
	if err := c.history.Delete(ctx, id); err != nil {
		return err
	}
	return c.RefreshHistory(ctx)
}

// RefreshHistory reloads the history list from storage.
func (c *Controller) RefreshHistory(ctx context.Context) error {
	items, err := c.history.List(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state.History = items
	c.mu.Unlock()
	return nil
}

// SelectNode starts a quiz on an AVAILABLE or COMPLETED node.
func (c *Controller) SelectNode(ctx context.Context, id string) (err error) {
	var node skilltree.Node
	snap, err := c.begin("Generating quiz...", func(s *State) error {
		if s.View != ViewGraph {
			return ErrInvalidTransition
		}
		n, ok := skilltree.Find(s.Nodes, id)
		if !ok {
			return ErrUnknownNode
		}
		if !n.Selectable() {
			return ErrNodeLocked
		}
		node = n
		return nil
	})
	if err != nil {
		return err
	}
	defer func() { c.end(err) }()

	gen, err := c.generator(ctx)
	if err != nil {
		return err
	}
	questions, err := gen.GenerateQuiz(ctx, node, snap.Topic)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.state.ActiveNodeID = node.ID
	c.state.Quiz = &Quiz{NodeID: node.ID, Questions: questions, Selected: NoSelection}
	c.state.Summary = nil
	c.state.View = ViewQuiz
	c.mu.Unlock()
	return nil
}

// SelectOption picks an answer for the current question. It can be changed
// until the answer is confirmed.
func (c *Controller) SelectOption(i int) error {
	return c.update(func(s *State) error {
		if s.View != ViewQuiz || s.Quiz == nil || s.Quiz.Confirmed {
			return ErrInvalidTransition
		}
		if i < 0 || i >= len(s.Quiz.Current().Options) {
			return ErrInvalidOption
		}
		s.Quiz.Selected = i
		return nil
	})
}

// ConfirmAnswer locks in the selected option. This is the only place the
// correct count changes.
func (c *Controller) ConfirmAnswer() error {
	return c.update(func(s *State) error {
		q := s.Quiz
		if s.View != ViewQuiz || q == nil || q.Confirmed || q.Selected == NoSelection {
			return ErrInvalidTransition
		}
		q.Confirmed = true
		if q.Current().IsCorrect(q.Selected) {
			q.Correct++
		}
		return nil
	})
}

// NextQuestion advances past a confirmed answer. After the last question it
// scores the attempt, completes the node and shows the summary.
func (c *Controller) NextQuestion(ctx context.Context) error {
	var finish bool
	err := c.update(func(s *State) error {
		q := s.Quiz
		if s.View != ViewQuiz || q == nil || !q.Confirmed {
			return ErrInvalidTransition
		}
		if q.IsLast() {
			finish = true
			return nil
		}
		q.Index++
		q.Selected = NoSelection
		q.Confirmed = false
		return nil
	})
	if err != nil || !finish {
		return err
	}
	return c.finishQuiz(ctx)
}

func (c *Controller) finishQuiz(ctx context.Context) (err error) {
	snap, err := c.begin("Summarizing your results...", inView(ViewQuiz))
	if err != nil {
		return err
	}
	defer func() { c.end(err) }()

	quiz := snap.Quiz
	node, ok := snap.ActiveNode()
	if !ok {
		return ErrUnknownNode
	}
	correct, total := quiz.Correct, quiz.Total()
	stars := skilltree.Stars(correct, total)

	text, sumErr := c.summarize(ctx, correct, total, node.Label)
	if sumErr != nil {
		c.logger.WarnContext(ctx, "summary generation failed, using fallback", "err", sumErr)
		text = fallbackSummary(correct, total, node.Label)
	}

	nodes, err := skilltree.Complete(snap.Nodes, node.ID, stars)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.state.Nodes = nodes
	c.state.Quiz = nil
	c.state.Summary = &Summary{
		NodeID:    node.ID,
		NodeLabel: node.Label,
		Text:      text,
		Stars:     stars,
		Correct:   correct,
		Total:     total,
	}
	c.state.View = ViewSummary
	c.mu.Unlock()

	c.saveHistory(ctx, snap.SessionID, snap.Topic, nodes)
	return nil
}

func (c *Controller) summarize(ctx context.Context, correct, total int, label string) (string, error) {
	gen, err := c.generator(ctx)
	if err != nil {
		return "", err
	}
	return gen.GenerateSummary(ctx, correct, total, label)
}

// CloseQuiz abandons the quiz and returns to the graph without progress.
func (c *Controller) CloseQuiz() error {
	return c.update(func(s *State) error {
		if s.View != ViewQuiz {
			return ErrInvalidTransition
		}
		s.Quiz = nil
		s.ActiveNodeID = ""
		s.View = ViewGraph
		return nil
	})
}

// Continue leaves the summary for the graph.
func (c *Controller) Continue() error {
	return c.update(func(s *State) error {
		if s.View != ViewSummary {
			return ErrInvalidTransition
		}
		s.Summary = nil
		s.ActiveNodeID = ""
		s.View = ViewGraph
		return nil
	})
}

// GoHome returns to the home view. Topic and nodes stay in memory so the
// session can be resumed; an open quiz is dropped.
func (c *Controller) GoHome() error {
	return c.update(func(s *State) error {
		s.Quiz = nil
		s.Summary = nil
		s.ActiveNodeID = ""
		s.View = ViewHome
		return nil
	})
}

// Resume goes back to the in-memory session's graph.
func (c *Controller) Resume() error {
	return c.update(func(s *State) error {
		if s.View != ViewHome {
			return ErrInvalidTransition
		}
		if !s.HasSession() {
			return ErrNoSession
		}
		s.View = ViewGraph
		return nil
	})
}

// UpdateConfig validates and persists cfg. The generator is rebuilt on the
// next request.
func (c *Controller) UpdateConfig(ctx context.Context, cfg llm.Config) error {
	if err := c.update(func(*State) error { return nil }); err != nil {
		return err
	}
	if err := c.settings.Save(ctx, cfg); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.Config = cfg
	c.gen = nil
	c.mu.Unlock()
	return nil
}

// DismissError clears the error banner.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.state.Error = ""
	c.mu.Unlock()
}

// saveHistory upserts the session and refreshes the list. Failures are
// logged; the in-memory session is still usable.
func (c *Controller) saveHistory(ctx context.Context, id, topic string, nodes []skilltree.Node) {
	if _, err := c.history.Upsert(ctx, id, topic, nodes); err != nil {
		c.logger.ErrorContext(ctx, "saving history failed", "session", id, "err", err)
		return
	}
	if err := c.RefreshHistory(ctx); err != nil {
		c.logger.ErrorContext(ctx, "reloading history failed", "err", err)
	}
}

// IsUserError reports whether err is a rejected intent rather than a
// failed operation.
func IsUserError(err error) bool {
	return errors.Is(err, ErrBusy) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNodeLocked) ||
		errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrInvalidOption) ||
		errors.Is(err, ErrUnknownNode)
}
