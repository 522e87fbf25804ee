package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/gymdesk/backend/internal/models"
)

const slipQRSize = 256

// ClosingSlip is the printable proof of a closed register.
type ClosingSlip struct {
	Payload string `json:"payload"`
	QRImage string `json:"qrImage"` // base64 PNG
}

type slipPayload struct {
	Gym         string             `json:"gym"`
	Date        string             `json:"date"`
	Opening     string             `json:"opening"`
	Expected    string             `json:"expected"`
	Counted     string             `json:"counted"`
	Difference  string             `json:"difference"`
	Discrepancy models.Discrepancy `json:"discrepancy"`
	ClosedBy    string             `json:"closedBy"`
	ClosedAt    string             `json:"closedAt"`
}

type ReceiptService struct {
	registers *RegisterService
}

func NewReceiptService(registers *RegisterService) *ReceiptService {
	return &ReceiptService{registers: registers}
}

func (s *ReceiptService) ClosingSlip(ctx context.Context, tenantID, date string) (*ClosingSlip, error) {
	reg, err := s.registers.GetByDate(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	if reg.IsOpen() || reg.ClosingAmount == nil || reg.ExpectedBalance == nil || reg.Difference == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotClosed, tenantID, date)
	}

	slip := slipPayload{
		Gym:         reg.TenantID,
		Date:        reg.Date,
		Opening:     reg.OpeningAmount.StringFixed(2),
		Expected:    reg.ExpectedBalance.StringFixed(2),
		Counted:     reg.ClosingAmount.StringFixed(2),
		Difference:  reg.Difference.StringFixed(2),
		Discrepancy: reg.Discrepancy,
		ClosedBy:    reg.ClosedBy,
	}
	if reg.ClosingTime != nil {
		slip.ClosedAt = reg.ClosingTime.UTC().Format(time.RFC3339)
	}

	jsonData, err := json.Marshal(slip)
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.New(string(jsonData), qrcode.Medium)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(slipQRSize)); err != nil {
		return nil, err
	}

	return &ClosingSlip{
		Payload: string(jsonData),
		QRImage: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
