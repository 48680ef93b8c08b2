// File: internal/usecase/consultant_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/adapter"
	"telegram-store-consultant/internal/domain/ports/repository"
	"telegram-store-consultant/internal/infra/logging"
	"telegram-store-consultant/internal/infra/metrics"
	red "telegram-store-consultant/internal/infra/redis"
)

var _ ConsultantUseCase = (*consultantUC)(nil)

// ConsultantUseCase runs one conversation turn end to end.
type ConsultantUseCase interface {
	// HandleMessage processes one user message: at most one tool round
	// and at most two model calls per turn. It degrades to an apology on
	// internal failure; the error return is for transport-level problems
	// only.
	HandleMessage(ctx context.Context, userID int64, text string) (*ConsultantReply, error)

	// Reset drops the user's session.
	Reset(ctx context.Context, userID int64) error
}

// TurnLocker serializes turns per user.
type TurnLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, key, token string) error
}

type consultantUC struct {
	sessions repository.SessionStore
	ai       adapter.AIServiceAdapter
	registry *ToolRegistry
	locker   TurnLocker
	log      *zerolog.Logger

	model       string
	tokenBudget int
	lockTTL     time.Duration
}

func NewConsultantUseCase(
	sessions repository.SessionStore,
	ai adapter.AIServiceAdapter,
	registry *ToolRegistry,
	locker TurnLocker,
	modelName string,
	tokenBudget int,
	lockTTL time.Duration,
	log *zerolog.Logger,
) *consultantUC {
	return &consultantUC{
		sessions:    sessions,
		ai:          ai,
		registry:    registry,
		locker:      locker,
		log:         log,
		model:       modelName,
		tokenBudget: tokenBudget,
		lockTTL:     lockTTL,
	}
}

func (u *consultantUC) HandleMessage(ctx context.Context, userID int64, text string) (*ConsultantReply, error) {
	lockKey := red.TurnKey(userID)
	token, err := u.locker.TryLock(ctx, lockKey, u.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrTurnInProgress) {
			metrics.TurnRejected()
			return &ConsultantReply{Text: msgBusy}, nil
		}
		return nil, err
	}
	defer func() {
		if err := u.locker.Unlock(ctx, lockKey, token); err != nil {
			u.log.Warn().Err(err).Int64("tg_id", userID).Msg("turn unlock failed")
		}
	}()

	ctx = logging.WithTgID(ctx, userID)
	ctx = logging.WithTurnID(ctx, uuid.NewString())
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "ConsultantUC.HandleMessage")()

	sess, err := u.sessions.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		sess = model.NewConsultantSession(userID, consultantSystemPrompt)
	}
	sess.AppendText(model.RoleUser, text)
	u.trim(ctx, sess)

	res, err := u.ai.ChatWithTools(ctx, u.model, toAdapterMessages(sess.History), u.registry.Defs())
	if err != nil {
		log.Error().Err(err).Msg("chat call failed")
		u.save(ctx, sess)
		return &ConsultantReply{Text: msgGenericError}, nil
	}

	if len(res.ToolCalls) == 0 {
		sess.AppendText(model.RoleAssistant, res.Content)
		u.save(ctx, sess)
		return &ConsultantReply{Text: res.Content}, nil
	}

	sess.Append(model.ChatMessage{
		Role:      model.RoleAssistant,
		Content:   res.Content,
		ToolCalls: toModelCalls(res.ToolCalls),
	})

	// Tool calls run in the order the model issued them; effects merge
	// first-wins per kind.
	var merged TurnEffect
	for _, call := range res.ToolCalls {
		payload, effect := u.registry.Dispatch(ctx, sess, call)
		sess.Append(model.ChatMessage{Role: model.RoleTool, Content: payload, ToolCallID: call.ID})
		if effect == nil {
			continue
		}
		if merged.Clarification == "" && effect.Clarification != "" {
			merged.Clarification = effect.Clarification
		}
		if merged.Carousel == nil && effect.Carousel != nil {
			merged.Carousel = effect.Carousel
			merged.NoExactMatch = effect.NoExactMatch
		}
		if merged.Photo == "" && effect.Photo != "" {
			merged.Photo = effect.Photo
		}
	}

	// A pending clarification suppresses everything else: answering it is
	// the only way forward.
	if merged.Clarification != "" {
		sess.AppendText(model.RoleAssistant, merged.Clarification)
		u.save(ctx, sess)
		return &ConsultantReply{Text: merged.Clarification, Clarification: true}, nil
	}

	// A carousel replaces the narration call; the cards speak for
	// themselves.
	if merged.Carousel != nil {
		intro := "Вот что я подобрал:"
		if merged.NoExactMatch {
			intro = "Точных совпадений нет, но посмотрите похожие варианты:"
		}
		ids := make([]int64, 0, len(merged.Carousel))
		for _, p := range merged.Carousel {
			ids = append(ids, p.ID)
		}
		sess.SetCarousel(ids)
		sess.AppendText(model.RoleAssistant, intro)
		u.save(ctx, sess)
		return &ConsultantReply{Text: intro, Products: merged.Carousel, NoExactMatch: merged.NoExactMatch}, nil
	}

	// Second model call narrates the tool results.
	narration, err := u.ai.Chat(ctx, u.model, toAdapterMessages(sess.History))
	if err != nil {
		log.Error().Err(err).Msg("narration call failed")
		u.save(ctx, sess)
		return &ConsultantReply{Text: msgGenericError}, nil
	}
	sess.AppendText(model.RoleAssistant, narration)
	u.save(ctx, sess)
	return &ConsultantReply{Text: narration, Photo: merged.Photo}, nil
}

func (u *consultantUC) Reset(ctx context.Context, userID int64) error {
	return u.sessions.Delete(ctx, userID)
}

// save persists the session even after partial turns, so tool side
// effects and history survive a failed narration.
func (u *consultantUC) save(ctx context.Context, sess *model.ConsultantSession) {
	if err := u.sessions.Save(ctx, sess); err != nil {
		u.log.Error().Err(err).Int64("tg_id", sess.UserID).Msg("session save failed")
	}
}

func (u *consultantUC) trim(ctx context.Context, sess *model.ConsultantSession) {
	sess.TrimToBudget(func(m model.ChatMessage) int {
		n, err := u.ai.CountTokens(ctx, u.model, []adapter.Message{toAdapterMessage(m)})
		if err != nil {
			return len(m.Content) / 4
		}
		return n
	}, u.tokenBudget)
}

func toAdapterMessage(m model.ChatMessage) adapter.Message {
	out := adapter.Message{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, adapter.ToolCall(tc))
	}
	return out
}

func toAdapterMessages(history []model.ChatMessage) []adapter.Message {
	out := make([]adapter.Message, 0, len(history))
	for _, m := range history {
		out = append(out, toAdapterMessage(m))
	}
	return out
}

func toModelCalls(calls []adapter.ToolCall) []model.ToolCall {
	out := make([]model.ToolCall, 0, len(calls))
	for _, c := range calls {
		out = append(out, model.ToolCall(c))
	}
	return out
}
