// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// ReportEventsQueue is the durable queue report lifecycle events go to.
const ReportEventsQueue = "wastewater.report.events"

// Report event actions.
const (
	ReportCreated = "created"
	ReportUpdated = "updated"
	ReportDeleted = "deleted"
)

// ReportEvent is published after a wastewater report change has committed.
// It carries enough for downstream consumers to audit or notify without
// querying the primary database.
type ReportEvent struct {
	Action     string `json:"action"`
	ReportID   uint64 `json:"report_id"`
	Vendor     string `json:"vendor"`
	Status     string `json:"status"`
	ItemCount  int    `json:"item_count"`
	OccurredAt string `json:"occurred_at"`
}

// NewReportEvent stamps an event with the current UTC time.
func NewReportEvent(action string, reportID uint64, vendor, status string, items int) ReportEvent {
	return ReportEvent{
		Action:     action,
		ReportID:   reportID,
		Vendor:     vendor,
		Status:     status,
		ItemCount:  items,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
