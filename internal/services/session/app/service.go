// Package app implements the session service: use-case orchestration over
// the event publisher. It constructs events and appends them to the log; it
// holds no party state and never observes materialization.
package app

import (
	"context"
	"log"
	"strings"

	"github.com/louisbranch/crowdcue/internal/auth"
	"github.com/louisbranch/crowdcue/internal/party"
	"github.com/louisbranch/crowdcue/internal/party/event"
	"github.com/louisbranch/crowdcue/internal/platform/broker"
	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
)

// Service orchestrates party creation, joining, and update submission.
type Service struct {
	publisher broker.Publisher
}

// NewService creates a session service over the given publisher.
func NewService(publisher broker.Publisher) *Service {
	return &Service{publisher: publisher}
}

// CreateParty publishes the initial creation event under a freshly generated
// join code and returns the code. Code collisions are treated as negligible
// probability and not retried.
func (s *Service) CreateParty(ctx context.Context, partyName, hostID string) (party.Code, error) {
	partyName = strings.TrimSpace(partyName)
	if partyName == "" {
		return "", apperrors.New(apperrors.CodePartyNameEmpty, "party name is required")
	}

	code := party.NewCode()
	evt := event.Created{Code: code, PartyName: partyName, HostID: hostID}
	if err := s.publish(ctx, code, evt); err != nil {
		return "", err
	}
	return code, nil
}

// JoinParty publishes a member-joined event for an existing join code.
// Whether the join is accepted (a duplicate join is rejected) is decided
// downstream by the materializer, not here.
func (s *Service) JoinParty(ctx context.Context, code party.Code, userID string) error {
	return s.publish(ctx, code, event.MemberJoined{UserID: userID})
}

// SubmitUpdate publishes any party event after checking the caller's role
// against the write policy.
func (s *Service) SubmitUpdate(ctx context.Context, code party.Code, role auth.Role, evt event.Event) error {
	if err := CheckWritePolicy(role, evt); err != nil {
		return err
	}
	return s.publish(ctx, code, evt)
}

// publish serializes and appends one event. Success means the broker
// acknowledged durable persistence; any failure is surfaced to the caller as
// a hard failure of the requested action.
func (s *Service) publish(ctx context.Context, code party.Code, evt event.Event) error {
	if !code.Valid() {
		return apperrors.New(apperrors.CodePartyCodeInvalid, "party code is invalid")
	}
	data, err := event.Encode(evt)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeEventInvalid, "encode party event", err)
	}
	rec := broker.Record{Topic: broker.TopicPartyUpdates, Key: code.String(), Value: data}
	if err := s.publisher.Publish(ctx, rec); err != nil {
		log.Printf("publish %s for party %s: %v", evt.EventType(), code, err)
		return apperrors.Wrap(apperrors.CodePublishFailed, "publish party event", err)
	}
	log.Printf("published %s for party %s", evt.EventType(), code)
	return nil
}
