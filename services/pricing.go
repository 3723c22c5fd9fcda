package services

import (
	"context"
	"errors"
	"log"

	"cleanup-platform/models"

	"gorm.io/gorm"
)

// ModelRetrainer triggers pricing model retraining when enough new labeled
// data exists. The model itself lives in the pricing component; only the
// trigger bookkeeping is here.
type ModelRetrainer interface {
	RetrainIfReady(ctx context.Context) (bool, error)
}

// PriceModelService counts labeled samples (settled donations and resolved
// requests) accumulated since the last training run and records a run when
// the threshold is met.
type PriceModelService struct {
	DB            *gorm.DB
	MinNewSamples int64
}

func NewPriceModelService(db *gorm.DB, minNewSamples int64) *PriceModelService {
	return &PriceModelService{DB: db, MinNewSamples: minNewSamples}
}

func (s *PriceModelService) RetrainIfReady(ctx context.Context) (bool, error) {
	var last models.TrainingRun
	err := s.DB.WithContext(ctx).Order("created_at DESC").First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	var donations, requests int64
	dq := s.DB.WithContext(ctx).Model(&models.Donation{})
	rq := s.DB.WithContext(ctx).Model(&models.CleanupRequest{}).
		Where("status IN ?", []string{models.StatusApproved, models.StatusCompleted})
	if last.ID != "" {
		dq = dq.Where("created_at > ?", last.CreatedAt)
		rq = rq.Where("updated_at > ?", last.CreatedAt)
	}
	if err := dq.Count(&donations).Error; err != nil {
		return false, err
	}
	if err := rq.Count(&requests).Error; err != nil {
		return false, err
	}

	samples := donations + requests
	if samples < s.MinNewSamples {
		log.Printf("[Pricing] %d new samples, below retrain threshold %d", samples, s.MinNewSamples)
		return false, nil
	}

	run := models.TrainingRun{SampleCount: samples}
	if err := s.DB.WithContext(ctx).Create(&run).Error; err != nil {
		return false, err
	}

	log.Printf("[Pricing] 🔁 retrain triggered with %d new samples (run %s)", samples, run.ID)
	return true, nil
}
