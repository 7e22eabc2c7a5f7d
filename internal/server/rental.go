package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	rentaldomain "github.com/plantdesklabs/plantdesk/internal/rental/domain"
)

type createRentalRequest struct {
	CustomerName string `json:"customerName"`
	MachineID    string `json:"machineId"`
	StartDate    string `json:"startDate"`
	MonthlyRate  int64  `json:"monthlyRate"`
}

type recordPaymentRequest struct {
	Amount      int64  `json:"amount"`
	Method      string `json:"method"`
	PaymentDate string `json:"paymentDate"`
}

// contractResponse adds the derived ledger reads the dashboard shows
// alongside the stored contract.
type contractResponse struct {
	*rentaldomain.RentalContract
	TotalBilled int64 `json:"totalBilled"`
	Balance     int64 `json:"balance"`
}

func toContractResponse(c *rentaldomain.RentalContract) contractResponse {
	return contractResponse{
		RentalContract: c,
		TotalBilled:    c.TotalBilled(),
		Balance:        c.Balance(),
	}
}

// @Summary      Create rental contract
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Idempotency Key"
// @Router       /rentals [post]
func (s *Server) CreateRental(c *gin.Context) {
	var req createRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	contract, err := s.rentalSvc.Create(c.Request.Context(), rentaldomain.CreateRequest{
		CustomerName:   req.CustomerName,
		MachineID:      req.MachineID,
		StartDate:      req.StartDate,
		MonthlyRate:    req.MonthlyRate,
		IdempotencyKey: idempotencyKeyFromHeader(c),
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	respondCreated(c, toContractResponse(contract))
}

// @Summary      List rental contracts
// @Description  Returns every contract after catching up elapsed billing cycles.
// @Tags         rentals
// @Produce      json
// @Router       /rentals [get]
func (s *Server) ListRentals(c *gin.Context) {
	contracts, err := s.rentalSvc.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	out := make([]contractResponse, 0, len(contracts))
	for i := range contracts {
		out = append(out, toContractResponse(&contracts[i]))
	}
	respondData(c, out)
}

// @Summary      Renew rental (bill one cycle)
// @Tags         rentals
// @Produce      json
// @Router       /rentals/{id}/renew [put]
func (s *Server) RenewRental(c *gin.Context) {
	contract, err := s.rentalSvc.Renew(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	respondData(c, toContractResponse(contract))
}

// @Summary      Record payment against a rental contract
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Router       /rentals/{id}/payment [post]
func (s *Server) RecordRentalPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	var paymentDate *time.Time
	if strings.TrimSpace(req.PaymentDate) != "" {
		parsed, err := parseDate(req.PaymentDate)
		if err != nil {
			invalidRequest(c)
			return
		}
		paymentDate = &parsed
	}

	contract, err := s.rentalSvc.RecordPayment(c.Request.Context(), c.Param("id"), rentaldomain.PaymentRequest{
		Amount:      req.Amount,
		Method:      req.Method,
		PaymentDate: paymentDate,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	respondData(c, toContractResponse(contract))
}

// @Summary      Delete rental contract and release machine stock
// @Tags         rentals
// @Produce      json
// @Router       /rentals/delete-contract/{id} [delete]
func (s *Server) DeleteRental(c *gin.Context) {
	if err := s.rentalSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	respondMessage(c, "Rental contract deleted")
}

func idempotencyKeyFromHeader(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
