package sync

import (
	"context"
	"log"
	"slices"

	"github.com/pkg/errors"

	"github.com/kleros/t2cr-dashboard-backend/domain"
)

// resolveStatus derives the dashboard status from the raw registration status
// and, for disputed items, the live dispute status from the arbitrator.
func (l *Loader) resolveStatus(ctx context.Context, status domain.RegistrationStatus, requests []*domain.Request) (domain.DashboardStatus, error) {
	switch status {
	case domain.RegistrationRegistered:
		return domain.StatusAccepted, nil
	case domain.RegistrationAbsent:
		return domain.StatusRejected, nil
	}

	// an item with a pending registration/clearing request always has at
	// least one request on chain; tolerate an empty history anyway
	if len(requests) == 0 {
		log.Printf("[WARN] item with registration status [%d] has no requests", status)
		return domain.StatusPending, nil
	}

	request := requests[len(requests)-1]
	if !request.Disputed {
		return domain.StatusPending, nil
	}
	disputeStatus, err := l.disputes.DisputeStatus(ctx, request.DisputeID)
	if err != nil {
		return 0, errors.Wrapf(err, "getting status of dispute [%d]", request.DisputeID)
	}
	if disputeStatus == domain.DisputeAppealable {
		return domain.StatusCrowdfunding, nil
	}
	return domain.StatusAppealed, nil
}

type requestInfo struct {
	challenged      bool
	appealed        bool
	parties         []string
	lastRequestTime int64
}

// deriveRequestInfo walks an item's request history: challenged if any request
// was disputed, appealed if any request went past two rounds, parties is the
// union of non-zero requester/challenger slots in first-seen order.
func deriveRequestInfo(requests []*domain.Request) requestInfo {
	derived := requestInfo{parties: []string{}}
	for _, request := range requests {
		derived.challenged = derived.challenged || request.Disputed
		derived.appealed = derived.appealed || len(request.Rounds) > 2
		for _, party := range request.Parties[1:] {
			if party == domain.ZeroAddress || slices.Contains(derived.parties, party) {
				continue
			}
			derived.parties = append(derived.parties, party)
		}
	}
	if len(requests) > 0 {
		derived.lastRequestTime = requests[len(requests)-1].SubmissionTime
	}
	return derived
}
