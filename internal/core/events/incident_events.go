package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeIncidentCreated  = "incident.created"
	EventTypeIncidentResolved = "incident.resolved"
	EventTypeIncidentAssigned = "incident.assigned"
	EventTypePartLowStock     = "part.low_stock"
)

type IncidentCreatedEvent struct {
	BaseEvent
	IncidentID int64  `json:"incident_id"`
	ReporterID int64  `json:"reporter_id"`
	Severity   string `json:"severity"`
	Title      string `json:"title"`
}

func NewIncidentCreatedEvent(incidentID, reporterID int64, severity, title string) *IncidentCreatedEvent {
	return &IncidentCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeIncidentCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"incident_id": incidentID,
				"reporter_id": reporterID,
				"severity":    severity,
				"title":       title,
			},
		},
		IncidentID: incidentID,
		ReporterID: reporterID,
		Severity:   severity,
		Title:      title,
	}
}

type IncidentResolvedEvent struct {
	BaseEvent
	IncidentID int64  `json:"incident_id"`
	ReporterID int64  `json:"reporter_id"`
	Status     string `json:"status"`
}

func NewIncidentResolvedEvent(incidentID, reporterID int64, status string) *IncidentResolvedEvent {
	return &IncidentResolvedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeIncidentResolved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"incident_id": incidentID,
				"reporter_id": reporterID,
				"status":      status,
			},
		},
		IncidentID: incidentID,
		ReporterID: reporterID,
		Status:     status,
	}
}

type IncidentAssignedEvent struct {
	BaseEvent
	IncidentID int64 `json:"incident_id"`
	EngineerID int64 `json:"engineer_id"`
}

func NewIncidentAssignedEvent(incidentID, engineerID int64) *IncidentAssignedEvent {
	return &IncidentAssignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeIncidentAssigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"incident_id": incidentID,
				"engineer_id": engineerID,
			},
		},
		IncidentID: incidentID,
		EngineerID: engineerID,
	}
}

type PartLowStockEvent struct {
	BaseEvent
	PartID       int64  `json:"part_id"`
	PartNumber   string `json:"part_number"`
	CurrentStock int    `json:"current_stock"`
	MinimumStock int    `json:"minimum_stock"`
}

func NewPartLowStockEvent(partID int64, partNumber string, currentStock, minimumStock int) *PartLowStockEvent {
	return &PartLowStockEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePartLowStock,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"part_id":       partID,
				"part_number":   partNumber,
				"current_stock": currentStock,
				"minimum_stock": minimumStock,
			},
		},
		PartID:       partID,
		PartNumber:   partNumber,
		CurrentStock: currentStock,
		MinimumStock: minimumStock,
	}
}
