package shell

import (
	"time"

	"github.com/magabrotheeeer/accountable/internal/models"
)

// demoTasks — задачи демо-пользователя офлайн-режима.
func demoTasks() []models.Task {
	at := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02T15:04:05", s)
		return t
	}
	return []models.Task{
		{ID: "1", UserID: "1", Title: "Finish Q3 Report", ScheduledAt: at("2023-10-27T14:00:00"), Status: models.TaskPending},
		{ID: "2", UserID: "1", Title: "Gym Workout", ScheduledAt: at("2023-10-26T18:00:00"), Status: models.TaskVerified},
		{ID: "3", UserID: "1", Title: "Clean Garage", ScheduledAt: at("2023-10-25T10:00:00"), Status: models.TaskMissed},
	}
}

// demoStats — статистика админ-панели офлайн-режима.
func demoStats(now time.Time) models.AdminStats {
	return models.AdminStats{
		TotalUsers:     1248,
		MRR:            42380,
		ConversionRate: 4,
		RecentSignups: []models.RecentSignup{
			{Email: "demo_user_1@example.com", Tier: models.TierPro, CreatedAt: now},
			{Email: "demo_user_2@example.com", Tier: models.TierBasic, CreatedAt: now},
			{Email: "demo_user_3@example.com", Tier: models.TierPro, CreatedAt: now},
		},
	}
}
