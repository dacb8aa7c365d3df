package service

import (
	"time"

	"go-resale-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

// defaultLowStockThreshold flags lots whose remaining units fall below it.
const defaultLowStockThreshold = 5

type ReportService interface {
	GetStockStats() (*repository.StockStats, error)
	GetSalesMovement(days int) ([]repository.SalesMovementData, error)
	GetRevenueSummary(days int) (*RevenueSummary, error)
	GetSellerSummaries(from, to *time.Time) ([]repository.SellerSummary, error)
}

type RevenueSummary struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Revenue   decimal.Decimal `json:"revenue"`
	SaleCount int64           `json:"sale_count"`
}

type reportService struct {
	reportRepo repository.ReportRepository
	saleRepo   repository.SaleRepository
}

func NewReportService(reportRepo repository.ReportRepository, saleRepo repository.SaleRepository) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		saleRepo:   saleRepo,
	}
}

func (s *reportService) GetStockStats() (*repository.StockStats, error) {
	return s.reportRepo.GetStockStats(defaultLowStockThreshold)
}

func (s *reportService) GetSalesMovement(days int) ([]repository.SalesMovementData, error) {
	if days <= 0 {
		days = 30
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.reportRepo.GetSalesMovement(startDate, endDate)
}

func (s *reportService) GetRevenueSummary(days int) (*RevenueSummary, error) {
	if days <= 0 {
		days = 30
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	revenue, count, err := s.reportRepo.GetRevenue(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return &RevenueSummary{
		From:      startDate,
		To:        endDate,
		Revenue:   revenue,
		SaleCount: count,
	}, nil
}

func (s *reportService) GetSellerSummaries(from, to *time.Time) ([]repository.SellerSummary, error) {
	return s.saleRepo.SellerSummaries(from, to)
}
