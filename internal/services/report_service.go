package services

import (
	"dealdesk/internal/models"
	"dealdesk/internal/repositories"
)

type ReportService struct {
	DealRepo repositories.DealRepository
}

func NewReportService(dealRepo repositories.DealRepository) *ReportService {
	return &ReportService{DealRepo: dealRepo}
}

type PipelineSummary struct {
	ByStatus map[models.DealStatus]int `json:"by_status"`
	Open     int                       `json:"open"`
	Won      int                       `json:"won"`
	Lost     int                       `json:"lost"`
}

func (s *ReportService) GetSummary() (*PipelineSummary, error) {
	counts, err := s.DealRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	summary := &PipelineSummary{ByStatus: counts}
	for status, n := range counts {
		switch status {
		case models.DealWon:
			summary.Won += n
		case models.DealLost:
			summary.Lost += n
		default:
			summary.Open += n
		}
	}
	return summary, nil
}
