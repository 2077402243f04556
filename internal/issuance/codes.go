package issuance

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"eventgate/internal/models"
	"eventgate/internal/ticketing"
)

// Paper codes are drawn uniformly from the 9-digit space. The retry cap is
// generous: collisions are rare until a large share of the space is used,
// but an uncapped loop could hang a request under pathological contention.
const (
	codeMin          = 100000000
	codeSpan         = 900000000
	maxCodeAttempts  = 1000
	maxBatchAttempts = 5
)

// GeneratePaperTickets pre-generates n paper tickets for an event, each with
// a globally unique 9-digit code and a paper-variant token signed over the
// ticket's own id. Returns the printable (token, code) pairs.
func (s *Service) GeneratePaperTickets(ctx context.Context, eventID string, n int) ([]models.PaperTicketIssue, error) {
	if n < 1 {
		return nil, fmt.Errorf("ticket count must be at least 1")
	}

	for attempt := 0; attempt < maxBatchAttempts; attempt++ {
		batch, issues, err := s.buildPaperBatch(ctx, eventID, n)
		if err != nil {
			return nil, err
		}

		err = s.DB.CreatePaperTickets(ctx, batch)
		if err == nil {
			if s.Logger != nil {
				s.Logger.LogIssuance("PAPER", eventID, fmt.Sprintf("Pre-generated %d paper tickets", n))
			}
			return issues, nil
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to insert paper tickets: %w", err)
		}
		// A concurrent generator won the race on one of our candidate
		// codes. The unique index rejected the batch; re-roll and retry.
		if s.Logger != nil {
			s.Logger.Warn("ISSUANCE", fmt.Sprintf("Paper code collision on insert for event %s, re-rolling batch", eventID))
		}
	}
	return nil, ticketing.ErrExhaustedRetries
}

func (s *Service) buildPaperBatch(ctx context.Context, eventID string, n int) ([]models.PaperTicket, []models.PaperTicketIssue, error) {
	batch := make([]models.PaperTicket, 0, n)
	issues := make([]models.PaperTicketIssue, 0, n)
	inBatch := make(map[string]bool, n)

	for i := 0; i < n; i++ {
		code, err := s.freePaperCode(ctx, inBatch)
		if err != nil {
			return nil, nil, err
		}
		inBatch[code] = true

		id := uuid.New().String()
		signed, err := s.Tokens.SignPaper(id, code)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to sign paper ticket: %w", err)
		}

		batch = append(batch, models.PaperTicket{
			ID:            id,
			EventID:       eventID,
			NineDigitCode: code,
			TicketToken:   signed,
		})
		issues = append(issues, models.PaperTicketIssue{
			PaperTicketID: id,
			NineDigitCode: code,
			TicketToken:   signed,
		})
	}
	return batch, issues, nil
}

// freePaperCode draws candidate codes until one is unused both in the
// database and in the batch under construction.
func (s *Service) freePaperCode(ctx context.Context, inBatch map[string]bool) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomPaperCode()
		if err != nil {
			return "", err
		}
		if inBatch[code] {
			continue
		}
		exists, err := s.DB.PaperCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check paper code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ticketing.ErrExhaustedRetries
}

func randomPaperCode() (string, error) {
	offset, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to draw random code: %w", err)
	}
	return fmt.Sprintf("%09d", codeMin+offset.Int64()), nil
}
