package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/splitkaro/billscan/internal/models"
)

var (
	ErrNoParticipants    = errors.New("at least one participant is required")
	ErrInvalidAssignment = errors.New("item assignment references an unknown item")
)

// SplitterService divides a scanned receipt among participants. Pure
// arithmetic over an already-extracted receipt; it never mutates the input.
type SplitterService struct{}

// NewSplitterService creates a new splitter
func NewSplitterService() *SplitterService {
	return &SplitterService{}
}

// Split divides the receipt according to the request mode.
func (s *SplitterService) Split(receiptID int, receipt *models.Receipt, req *models.SplitRequest) (*models.BillSplit, error) {
	if len(req.Participants) == 0 {
		return nil, ErrNoParticipants
	}

	switch req.Mode {
	case models.SplitModeItemized:
		return s.splitItemized(receiptID, receipt, req)
	case models.SplitModeEven, "":
		return s.splitEven(receiptID, receipt, req.Participants)
	default:
		return nil, fmt.Errorf("unknown split mode %q", req.Mode)
	}
}

// splitEven divides the total equally, rounding each share to the paisa
// and giving the rounding remainder to the first participant so the
// shares always sum back to the total.
func (s *SplitterService) splitEven(receiptID int, receipt *models.Receipt, participants []string) (*models.BillSplit, error) {
	n := len(participants)
	totalPaise := int64(math.Round(receipt.Total * 100))
	base := totalPaise / int64(n)
	remainder := totalPaise - base*int64(n)

	shares := make([]models.ParticipantShare, 0, n)
	for i, p := range participants {
		amount := base
		if i == 0 {
			amount += remainder
		}
		shares = append(shares, models.ParticipantShare{
			Participant: p,
			Amount:      float64(amount) / 100,
		})
	}

	return &models.BillSplit{
		ReceiptID: receiptID,
		Mode:      models.SplitModeEven,
		Total:     receipt.Total,
		Shares:    shares,
	}, nil
}

// splitItemized assigns items to participants and allocates tax and
// service charge proportionally to each participant's item total.
// Unassigned items are shared evenly across everyone.
func (s *SplitterService) splitItemized(receiptID int, receipt *models.Receipt, req *models.SplitRequest) (*models.BillSplit, error) {
	n := len(req.Participants)
	assigned := make(map[int]bool)

	itemTotals := make(map[string]float64, n)
	itemLists := make(map[string][]models.LineItem, n)

	for participant, indexes := range req.Assignments {
		for _, idx := range indexes {
			if idx < 0 || idx >= len(receipt.Items) {
				return nil, ErrInvalidAssignment
			}
			item := receipt.Items[idx]
			itemTotals[participant] += item.Price * float64(item.Quantity)
			itemLists[participant] = append(itemLists[participant], item)
			assigned[idx] = true
		}
	}

	// Spread whatever nobody claimed across all participants.
	sharedPerHead := 0.0
	for idx, item := range receipt.Items {
		if !assigned[idx] {
			sharedPerHead += item.Price * float64(item.Quantity) / float64(n)
		}
	}

	itemsGrandTotal := 0.0
	for _, item := range receipt.Items {
		itemsGrandTotal += item.Price * float64(item.Quantity)
	}

	shares := make([]models.ParticipantShare, 0, n)
	allocated := 0.0
	for i, p := range req.Participants {
		itemsTotal := itemTotals[p] + sharedPerHead

		var taxShare, serviceShare float64
		if itemsGrandTotal > 0 {
			fraction := itemsTotal / itemsGrandTotal
			taxShare = round2(receipt.Tax * fraction)
			serviceShare = round2(receipt.ServiceCharge * fraction)
		}

		amount := round2(itemsTotal + taxShare + serviceShare)
		shares = append(shares, models.ParticipantShare{
			Participant:  p,
			Items:        itemLists[p],
			ItemsTotal:   round2(itemsTotal),
			TaxShare:     taxShare,
			ServiceShare: serviceShare,
			Amount:       amount,
		})
		if i < n-1 {
			allocated += amount
		}
	}

	// Pin the last share so rounding drift never changes the bill total.
	if n > 0 && receipt.Total > 0 {
		last := &shares[n-1]
		last.Amount = round2(receipt.Total - allocated)
		if last.Amount < 0 {
			last.Amount = 0
		}
	}

	return &models.BillSplit{
		ReceiptID: receiptID,
		Mode:      models.SplitModeItemized,
		Total:     receipt.Total,
		Shares:    shares,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
