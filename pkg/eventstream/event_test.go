package eventstream_test

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novelforge/continuity/pkg/eventstream"
)

func TestEventstream(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Eventstream Suite")
}

var _ = Describe("Event", func() {
	It("marshals ExchangeRecordedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.ExchangeRecordedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeExchangeRecorded,
			EventID:       "evt_123",
			EmittedAt:     now,
			Source: eventstream.EventSource{
				ProjectID: "my-project",
				Origin:    "api",
			},
			Exchange: eventstream.ExchangeMeta{
				QueryEntryID:  "q1",
				ResultEntryID: "r1",
				QueryUnits:    12,
				ResultUnits:   240,
			},
			Knowledge: eventstream.KnowledgeMeta{
				MentionCount: 3,
				IssueCount:   1,
			},
		}

		raw, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
		Expect(decoded).To(HaveKey("schema_version"))
		Expect(decoded).To(HaveKey("event_type"))
		Expect(decoded).To(HaveKey("source"))
		Expect(decoded).To(HaveKey("exchange"))
		Expect(decoded).To(HaveKey("knowledge"))
		Expect(decoded["event_type"]).To(Equal(eventstream.EventTypeExchangeRecorded))
	})
})
