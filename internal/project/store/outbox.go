package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
)

const aggregateTypeProject = "project"

// outboxMessages drains the events recorded on p into outbox rows.
func outboxMessages(p *models.Project) ([]ports.OutboxMessage, error) {
	events := p.PullEvents()
	messages := make([]ports.OutboxMessage, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal %s event: %w", e.EventType(), err)
		}
		messages = append(messages, ports.OutboxMessage{
			ID:            uuid.New(),
			AggregateType: aggregateTypeProject,
			AggregateID:   e.AggregateID(),
			EventType:     e.EventType(),
			Payload:       payload,
			CreatedAt:     e.OccurredAt(),
		})
	}
	return messages, nil
}
