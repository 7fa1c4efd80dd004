package model

import (
	"time"

	"homeplan/internal/caldate"
)

type MilestoneStatus string

const (
	MilestonePaid           MilestoneStatus = "Paid"
	MilestoneDueSoon        MilestoneStatus = "Due Soon"
	MilestoneUpcoming       MilestoneStatus = "Upcoming"
	MilestoneApprovalNeeded MilestoneStatus = "Approval Needed"
	MilestoneCompleted      MilestoneStatus = "Completed"
	MilestonePending        MilestoneStatus = "Pending"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePaid, MilestoneDueSoon, MilestoneUpcoming,
		MilestoneApprovalNeeded, MilestoneCompleted, MilestonePending:
		return true
	}
	return false
}

type Milestone struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Title     string          `json:"title"`
	Date      caldate.Date    `json:"date"`
	Amount    *float64        `json:"amount,omitempty"`
	Status    MilestoneStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// MilestoneDraft is a milestone that has not been stored yet.
type MilestoneDraft struct {
	ProjectID string          `json:"project_id"`
	Title     string          `json:"title"`
	Date      caldate.Date    `json:"date"`
	Amount    *float64        `json:"amount,omitempty"`
	Status    MilestoneStatus `json:"status"`
}
