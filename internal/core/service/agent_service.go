package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

type AgentService struct {
	agents     ports.AgentRepository
	dispatcher *Dispatcher
	logger     zerolog.Logger
	now        func() time.Time
}

func NewAgentService(agents ports.AgentRepository, dispatcher *Dispatcher, logger zerolog.Logger) *AgentService {
	return &AgentService{agents: agents, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// Register onboards the calling user as an agent. New agents start unverified,
// offline and pending verification.
func (s *AgentService) Register(ctx context.Context, in ports.RegisterAgentInput) (*domain.Agent, error) {
	if in.UserID == "" {
		return nil, domain.NewValidationError("user_id", "user is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, domain.NewValidationError("phone", "phone is required")
	}
	vt, err := domain.ParseVehicleType(in.VehicleType)
	if err != nil {
		return nil, err
	}
	if in.MaxCapacityKg <= 0 {
		return nil, domain.NewValidationError("max_capacity_kg", "max_capacity_kg must be greater than 0")
	}

	now := s.now().UTC()
	agent := &domain.Agent{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		Name:          strings.TrimSpace(in.Name),
		Phone:         strings.TrimSpace(in.Phone),
		VehicleType:   vt,
		MaxCapacityKg: in.MaxCapacityKg,
		Status:        domain.AgentPendingVerification,
		LastActiveAt:  now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, err
	}
	s.logger.Info().Str("agent_id", agent.ID).Str("user_id", in.UserID).Msg("agent registered")
	return agent, nil
}

func (s *AgentService) Profile(ctx context.Context, userID string) (*domain.Agent, error) {
	return s.agents.FindByUserID(ctx, userID)
}

// AgentIDForUser maps an authenticated agent user to the agent record.
func (s *AgentService) AgentIDForUser(ctx context.Context, userID string) (string, error) {
	a, err := s.agents.FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

// SetAvailability toggles the agent online or offline. Going online triggers
// a dispatch round for pending shipments.
func (s *AgentService) SetAvailability(ctx context.Context, userID string, available bool) (*domain.Agent, error) {
	a, err := s.agents.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated, err := s.agents.SetAvailability(ctx, a.ID, available, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}
	s.logger.Info().Str("agent_id", a.ID).Bool("available", available).Msg("agent availability changed")

	if available && updated.Dispatchable(0) {
		if _, err := s.dispatcher.DispatchPending(ctx, reconcileBatch); err != nil {
			s.logger.Warn().Err(err).Str("agent_id", a.ID).Msg("dispatch after going online failed")
		}
		if fresh, err := s.agents.FindByID(ctx, a.ID); err == nil {
			updated = fresh
		}
	}
	return updated, nil
}

// Verify marks the agent verified and active.
func (s *AgentService) Verify(ctx context.Context, agentID string) (*domain.Agent, error) {
	a, err := s.agents.SetStatus(ctx, agentID, domain.AgentActive, true, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("agent_id", agentID).Msg("agent verified")
	return a, nil
}

// SetStatus changes the administrative status, keeping verification.
func (s *AgentService) SetStatus(ctx context.Context, agentID, status string) (*domain.Agent, error) {
	st, err := domain.ParseAgentStatus(status)
	if err != nil {
		return nil, err
	}
	current, err := s.agents.FindByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if st == domain.AgentActive && !current.IsVerified {
		return nil, domain.NewValidationError("status", "agent must be verified before activation")
	}
	a, err := s.agents.SetStatus(ctx, agentID, st, current.IsVerified, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("agent_id", agentID).Str("status", string(st)).Msg("agent status changed")
	return a, nil
}

func (s *AgentService) List(ctx context.Context, status string) ([]*domain.Agent, error) {
	var st domain.AgentStatus
	if status != "" {
		parsed, err := domain.ParseAgentStatus(status)
		if err != nil {
			return nil, err
		}
		st = parsed
	}
	agents, err := s.agents.List(ctx, st)
	if err != nil && !errors.Is(err, domain.ErrAgentNotFound) {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return agents, nil
}
