package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/edvantage/crm-backend/internal/crm/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityService writes timeline entries. Recording is best-effort: a failed
// write is logged and swallowed so it can never fail the operation that
// produced it.
type ActivityService struct {
	activityRepo repositories.ActivityRepo
}

func NewActivityService(activityRepo repositories.ActivityRepo) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Record appends an entry to a lead's timeline. userID is nil for
// system-generated entries. metadata may be nil.
func (s *ActivityService) Record(ctx context.Context, workspaceID, leadID uuid.UUID, userID *uuid.UUID, activityType, subject, message string, metadata map[string]interface{}) {
	var meta datatypes.JSON
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("⚠️ failed to marshal activity metadata: %v", err)
		} else {
			meta = raw
		}
	}

	activity := &models.Activity{
		WorkspaceID: workspaceID,
		LeadID:      leadID,
		UserID:      userID,
		Type:        activityType,
		Subject:     subject,
		Message:     message,
		Metadata:    meta,
	}

	if err := s.activityRepo.Append(ctx, activity); err != nil {
		log.Printf("⚠️ failed to record %s activity for lead %s: %v", activityType, leadID, err)
	}
}

// ListForLead returns the newest-first timeline of a lead.
func (s *ActivityService) ListForLead(ctx context.Context, workspaceID, leadID uuid.UUID, limit int) ([]models.Activity, error) {
	return s.activityRepo.ListForLead(ctx, workspaceID, leadID, limit)
}
