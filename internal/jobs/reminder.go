// Package jobs holds background work that runs outside the request path.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/edvantage/crm-backend/internal/core/gateway"
	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/edvantage/crm-backend/internal/crm/repositories"
	"github.com/edvantage/crm-backend/internal/crm/services"
	"github.com/robfig/cron/v3"
)

// ReminderJob periodically sweeps open tasks that just came due and nudges
// their owners on WhatsApp. Each task is reminded at most once.
type ReminderJob struct {
	taskRepo   repositories.TaskRepo
	leadRepo   repositories.LeadRepo
	userRepo   repositories.UserRepo
	gateway    *gateway.Service
	activities *services.ActivityService
	campaign   string
	cron       *cron.Cron
}

func NewReminderJob(
	taskRepo repositories.TaskRepo,
	leadRepo repositories.LeadRepo,
	userRepo repositories.UserRepo,
	gw *gateway.Service,
	activities *services.ActivityService,
	reminderCampaign string,
) *ReminderJob {
	return &ReminderJob{
		taskRepo:   taskRepo,
		leadRepo:   leadRepo,
		userRepo:   userRepo,
		gateway:    gw,
		activities: activities,
		campaign:   reminderCampaign,
	}
}

// Start schedules the sweep. The schedule is a standard 5-field cron spec.
func (j *ReminderJob) Start(schedule string) error {
	j.cron = cron.New()
	_, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		j.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}

	j.cron.Start()
	log.Printf("⏰ task reminder job started (schedule %s)", schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *ReminderJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// Sweep sends reminders for all tasks due now. Exposed for tests and for the
// schedule callback.
func (j *ReminderJob) Sweep(ctx context.Context) {
	tasks, err := j.taskRepo.DueForReminder(ctx, time.Now())
	if err != nil {
		log.Printf("❌ reminder sweep failed to load tasks: %v", err)
		return
	}
	if len(tasks) == 0 {
		return
	}

	sent := 0
	for i := range tasks {
		if j.remind(ctx, &tasks[i]) {
			sent++
		}
	}
	log.Printf("⏰ reminder sweep done: %d/%d reminders sent", sent, len(tasks))
}

func (j *ReminderJob) remind(ctx context.Context, task *models.Task) bool {
	owner, err := j.userRepo.FindActive(ctx, task.OwnerID)
	if err != nil {
		// Owner left or was deactivated; stop retrying this task
		log.Printf("⚠️ task %s owner %s is gone, marking reminded", task.ID, task.OwnerID)
		_ = j.taskRepo.MarkReminded(ctx, task.ID)
		return false
	}
	if owner.Phone == "" {
		log.Printf("⚠️ task %s owner %s has no phone, marking reminded", task.ID, owner.ID)
		_ = j.taskRepo.MarkReminded(ctx, task.ID)
		return false
	}

	lead, err := j.leadRepo.FindByID(ctx, task.WorkspaceID, task.LeadID)
	if err != nil {
		log.Printf("⚠️ task %s references missing lead %s: %v", task.ID, task.LeadID, err)
		return false
	}

	params := []string{owner.Name, task.Title, lead.Name, task.DueAt.Format("02 Jan 15:04")}
	if _, err := j.gateway.Send(ctx, owner.Phone, j.campaign, params); err != nil {
		// Leave ReminderSent unset so the next sweep retries
		log.Printf("❌ reminder for task %s failed: %v", task.ID, err)
		return false
	}

	if err := j.taskRepo.MarkReminded(ctx, task.ID); err != nil {
		log.Printf("⚠️ failed to mark task %s reminded: %v", task.ID, err)
	}

	j.activities.Record(ctx, task.WorkspaceID, task.LeadID, nil,
		models.ActivityTask,
		"Task Reminder Sent",
		fmt.Sprintf("Reminded %s about %q", owner.Name, task.Title),
		map[string]interface{}{"task_id": task.ID})

	return true
}
