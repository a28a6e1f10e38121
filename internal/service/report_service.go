package service

import (
	"context"
	"fmt"

	"rosemary-store/internal/model"
	"rosemary-store/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultLowStockThreshold = 5
	defaultSalesMonths       = 12
)

type reportService struct {
	reportRepo repository.ReportRepository
	logger     zerolog.Logger
}

// NewReportService creates a new report service.
func NewReportService(reportRepo repository.ReportRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		logger:     logger.With().Str("service", "report").Logger(),
	}
}

func (s *reportService) LowStock(ctx context.Context, threshold int) ([]model.LowStockItem, error) {
	if threshold <= 0 {
		threshold = defaultLowStockThreshold
	}
	items, err := s.reportRepo.LowStock(ctx, threshold)
	if err != nil {
		s.logger.Error().Err(err).Int("threshold", threshold).Msg("low stock report failed")
		return nil, fmt.Errorf("failed to build low stock report: %w", err)
	}
	return items, nil
}

func (s *reportService) MonthlySales(ctx context.Context, months int) ([]model.MonthlySales, error) {
	if months <= 0 || months > 120 {
		months = defaultSalesMonths
	}
	sales, err := s.reportRepo.MonthlySales(ctx, months)
	if err != nil {
		s.logger.Error().Err(err).Msg("monthly sales report failed")
		return nil, fmt.Errorf("failed to build monthly sales report: %w", err)
	}
	return sales, nil
}

func (s *reportService) EmployeeSales(ctx context.Context) ([]model.EmployeeSales, error) {
	sales, err := s.reportRepo.EmployeeSales(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("employee sales report failed")
		return nil, fmt.Errorf("failed to build employee sales report: %w", err)
	}
	return sales, nil
}
