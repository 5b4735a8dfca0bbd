package events

import (
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

// RegisterObservers counts every domain event and writes it to the debug log.
func RegisterObservers(bus *EventBus, logger *zerolog.Logger) {
	for _, eventType := range AllTypes {
		bus.Subscribe(eventType, func(event *Event) error {
			metrics.IncDomainEvent(event.Type)
			logger.Debug().
				Str("event_type", event.Type).
				RawJSON("payload", event.Payload).
				Msg("domain event")
			return nil
		})
	}
}
