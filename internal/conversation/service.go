package conversation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"animeverse/internal/logging"
	"animeverse/internal/media"
	"animeverse/internal/metrics"
	"animeverse/internal/prompt"
	"animeverse/internal/recommend"
	"animeverse/internal/services"
	"animeverse/internal/services/llm"
	"animeverse/internal/session"
)

const component = "conversation"

// Model operation labels.
const (
	OperationReply     = "reply"
	OperationRecommend = "recommend"
)

// Completer is the subset of the LLM client the service depends on.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
	Stream(ctx context.Context, messages []llm.Message, onChunk llm.ChunkHandler) (string, error)
}

// Result is the outcome of a recommendation request.
type Result struct {
	Raw      string             `json:"raw"`
	Document recommend.Document `json:"document"`
	Top      []media.Card       `json:"top_cards"`
	Gems     []media.Card       `json:"hidden_gem_cards"`
}

// Service runs conversations against a model.
type Service struct {
	chat        Completer
	recommender Completer
	logger      *slog.Logger
	limits      session.Limits
	streaming   bool
	now         func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithRecommender uses a dedicated completer for the recommendation request.
func WithRecommender(c Completer) Option {
	return func(s *Service) {
		if c != nil {
			s.recommender = c
		}
	}
}

// WithLimits sets the chat limits applied to new sessions.
func WithLimits(limits session.Limits) Option {
	return func(s *Service) {
		s.limits = limits
	}
}

// WithStreaming toggles streamed guide replies.
func WithStreaming(enabled bool) Option {
	return func(s *Service) {
		s.streaming = enabled
	}
}

// NewService constructs a Service. chat answers the guide turns and, unless
// WithRecommender overrides it, the recommendation request too.
func NewService(chat Completer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		chat:        chat,
		recommender: chat,
		logger:      logging.NewComponentLogger(logger, component),
		streaming:   true,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewState creates a session bounded by the service limits.
func (s *Service) NewState(id string) *session.State {
	return session.NewState(id, s.limits)
}

// Start stores the preferences and opens the chat with the guide persona.
func (s *Service) Start(state *session.State, prefs session.Preferences) error {
	prefs = prefs.Normalize()
	if err := state.CompleteSetup(prefs, prompt.GuideSystemPrompt(prefs)); err != nil {
		return err
	}
	s.logger.Info("session started",
		logging.String(logging.FieldSessionID, state.ID),
		logging.String("experience", state.Preferences.Experience),
		logging.String("content_type", state.Preferences.ContentType),
		logging.String("length", state.Preferences.Length),
	)
	return nil
}

// Restart starts the session over with new preferences. The id is kept;
// history, turn counts and any recommendations are dropped. Invalid
// preferences leave the session untouched.
func (s *Service) Restart(state *session.State, prefs session.Preferences) error {
	prefs = prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		return err
	}
	previous := state.Stage
	state.Reset()
	if err := s.Start(state, prefs); err != nil {
		return err
	}
	s.logger.Debug("session restarted",
		logging.String(logging.FieldSessionID, state.ID),
		logging.String("previous_stage", string(previous)),
	)
	return nil
}

// Send records a user turn and, while the reply budget lasts, asks the model
// for the guide's answer. replied is false when the turn was recorded without
// a reply. When onChunk is non-nil the reply is delivered through it as it
// arrives; with streaming disabled it receives the whole reply once.
//
// A failed model call leaves the user turn counted.
func (s *Service) Send(ctx context.Context, state *session.State, text string, onChunk llm.ChunkHandler) (reply string, replied bool, err error) {
	wantsReply, err := state.AddUserMessage(text)
	if err != nil {
		return "", false, err
	}
	logger := s.logger.With(logging.String(logging.FieldSessionID, state.ID))
	if !wantsReply {
		logger.Info("final message recorded without reply",
			logging.Int("user_messages", state.UserMessageCount()),
			logging.String("stage", string(state.Stage)),
		)
		return "", false, nil
	}

	history := state.Messages()
	start := s.now()
	switch {
	case onChunk != nil && s.streaming:
		reply, err = s.chat.Stream(ctx, history, onChunk)
	default:
		reply, err = s.chat.Complete(ctx, history)
		if err == nil && onChunk != nil {
			err = onChunk(reply)
		}
	}
	elapsed := s.now().Sub(start)
	metrics.RecordLLMRequest(OperationReply, outcome(err), elapsed)
	if err != nil {
		logFailure(logger, "guide reply failed", "llm_reply_failed",
			"check the model endpoint and api key, then send the message again", err, elapsed)
		return "", false, classify(OperationReply, "guide reply failed", err)
	}

	state.AddAssistantMessage(reply)
	logger.Info("guide replied",
		logging.Int("user_messages", state.UserMessageCount()),
		logging.Int("remaining", state.RemainingUserMessages()),
		logging.Int("reply_chars", len(reply)),
		logging.Duration("elapsed", elapsed),
	)
	return reply, true, nil
}

// Recommend requests the final recommendations for a finished chat, parses
// the reply, and moves the session to the recommendations stage. An empty
// document is not an error; callers show the raw reply instead.
func (s *Service) Recommend(ctx context.Context, state *session.State) (Result, error) {
	if state.Stage != session.StageChatComplete {
		return Result{}, services.Wrap(services.ErrConflict, component, OperationRecommend,
			"chat must be complete before requesting recommendations", nil)
	}
	logger := s.logger.With(logging.String(logging.FieldSessionID, state.ID))

	start := s.now()
	raw, err := s.recommender.Complete(ctx, prompt.RecommendationMessages(state.Messages()))
	elapsed := s.now().Sub(start)
	metrics.RecordLLMRequest(OperationRecommend, outcome(err), elapsed)
	if err != nil {
		logFailure(logger, "recommendation request failed", "llm_recommend_failed",
			"retry the request; the session keeps its transcript", err, elapsed)
		return Result{}, classify(OperationRecommend, "recommendation request failed", err)
	}

	doc := recommend.Parse(raw)
	metrics.RecordParse(len(doc.Top), len(doc.HiddenGems), doc.Empty())
	if err := state.MarkRecommendations(doc); err != nil {
		return Result{}, err
	}

	attrs := []logging.Attr{
		logging.Int("top", len(doc.Top)),
		logging.Int("hidden_gems", len(doc.HiddenGems)),
		logging.Bool("theme", doc.Theme != ""),
		logging.Bool("where_to_watch", doc.WhereToWatch != ""),
		logging.Duration("elapsed", elapsed),
	}
	if doc.Empty() {
		attrs = append(attrs, logging.Alert("unparsed_reply"))
		logger.Warn("recommendation reply had no recognizable sections", logging.Args(attrs...)...)
	} else {
		logger.Info("recommendations parsed", logging.Args(attrs...)...)
	}

	return Result{
		Raw:      raw,
		Document: doc,
		Top:      media.Cards(doc.Top),
		Gems:     media.Cards(doc.HiddenGems),
	}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeError
	}
}

// logFailure warns about a failed model call. A canceled call means the
// caller left, so it is logged at info without a hint.
func logFailure(logger *slog.Logger, msg, eventType, hint string, err error, elapsed time.Duration) {
	if errors.Is(err, context.Canceled) {
		logger.Info(msg+": canceled", logging.Duration("elapsed", elapsed))
		return
	}
	logging.WarnWithHint(logger, msg, eventType, hint,
		logging.Error(err),
		logging.Duration("elapsed", elapsed),
	)
}

func classify(operation, message string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, llm.ErrMissingAPIKey):
		return services.Wrap(services.ErrConfiguration, component, operation, message, err)
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, component, operation, message, err)
	default:
		return services.Wrap(services.ErrTransient, component, operation, message, err)
	}
}
