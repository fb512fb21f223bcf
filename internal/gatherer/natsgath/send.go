package natsgath

import (
	"encoding/json"
)

// send never fails the judging job; lost events are only logged.
func (s *natsGatherer) send(msg interface{}) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal message", "error", err)
		return
	}

	if err := s.pub.Publish(s.subject, b); err != nil {
		s.logger.Error("failed to publish message to NATS", "subject", s.subject, "error", err)
	}
}
