package service

import (
	"context"
	"log"
	"time"

	"afcon-assistant-be/internal/dto"
	"afcon-assistant-be/internal/repository/memory"
	"afcon-assistant-be/pkg/events"
	pktNats "afcon-assistant-be/pkg/nats"
	"afcon-assistant-be/pkg/rag"
	"afcon-assistant-be/pkg/store"

	"github.com/google/uuid"
)

type IAssistantService interface {
	Chat(ctx context.Context, sessionId string, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type assistantService struct {
	orchestrator *rag.Orchestrator
	sessionRepo  *memory.SessionRepository
	natsPub      *pktNats.Publisher
	maxHistory   int
}

func NewAssistantService(
	orchestrator *rag.Orchestrator,
	sessionRepo *memory.SessionRepository,
	natsPub *pktNats.Publisher,
	maxHistory int,
) IAssistantService {
	return &assistantService{
		orchestrator: orchestrator,
		sessionRepo:  sessionRepo,
		natsPub:      natsPub,
		maxHistory:   maxHistory,
	}
}

// Chat answers one user turn. An empty sessionId starts a new session; the
// returned response always carries the id the client should send back.
func (s *assistantService) Chat(ctx context.Context, sessionId string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	session := s.resolveSession(sessionId)

	question := rag.Question{Text: req.Question, Language: req.Language}
	if question.Language == "" {
		question.Language = session.Language
	} else {
		session.Language = question.Language
	}

	started := time.Now()
	envelope, err := s.orchestrator.ProcessQuery(ctx, session, question)
	if err != nil {
		return nil, err
	}

	s.sessionRepo.Save(session)
	s.publishAnalytics(ctx, session.ID, req.Question, envelope, time.Since(started))

	return &dto.ChatResponse{
		SessionId:       session.ID,
		Answer:          envelope.Answer,
		ThinkingProcess: envelope.ThinkingProcess,
	}, nil
}

func (s *assistantService) resolveSession(sessionId string) *store.Session {
	if sessionId != "" {
		if session, found := s.sessionRepo.Get(sessionId); found {
			return session
		}
	}
	if sessionId == "" {
		sessionId = uuid.New().String()
	}
	return store.NewSession(sessionId, s.maxHistory)
}

// publishAnalytics is fire-and-forget. Analytics must never fail a chat.
func (s *assistantService) publishAnalytics(ctx context.Context, sessionId, question string, envelope *rag.AnswerEnvelope, elapsed time.Duration) {
	if s.natsPub == nil {
		return
	}
	event := events.ConversationAnswered{
		SessionId:  sessionId,
		Question:   question,
		AnswerSize: len(envelope.Answer),
		DurationMs: elapsed.Milliseconds(),
		OccurredAt: time.Now(),
	}
	if err := s.natsPub.Publish(ctx, event); err != nil {
		log.Printf("[WARN] Failed to publish analytics event: %v", err)
	}
}
