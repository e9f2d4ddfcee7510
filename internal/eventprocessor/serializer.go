// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// validatable is implemented by every event payload.
type validatable interface {
	Validate() error
}

// encodeMessage validates and marshals an event into a Watermill message
// whose UUID is the event id.
func encodeMessage(eventID, eventType string, userID int64, event validatable) (*message.Message, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s event: %w", eventType, err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	msg := message.NewMessage(eventID, data)
	msg.Metadata.Set(MetadataEventType, eventType)
	if userID > 0 {
		msg.Metadata.Set(MetadataUserID, strconv.FormatInt(userID, 10))
	}
	return msg, nil
}

// decodeMessage unmarshals and validates a payload into event.
func decodeMessage(msg *message.Message, event validatable) error {
	if err := json.Unmarshal(msg.Payload, event); err != nil {
		return fmt.Errorf("unmarshal event %s: %w", msg.UUID, err)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("event %s: %w", msg.UUID, err)
	}
	return nil
}

// DecodeProfileUpdated decodes a profile.updated message.
func DecodeProfileUpdated(msg *message.Message) (*ProfileUpdatedEvent, error) {
	var e ProfileUpdatedEvent
	if err := decodeMessage(msg, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// DecodeFeedbackRecorded decodes a feedback.recorded message.
func DecodeFeedbackRecorded(msg *message.Message) (*FeedbackRecordedEvent, error) {
	var e FeedbackRecordedEvent
	if err := decodeMessage(msg, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// DecodeBatchCompleted decodes a batch.completed message.
func DecodeBatchCompleted(msg *message.Message) (*BatchCompletedEvent, error) {
	var e BatchCompletedEvent
	if err := decodeMessage(msg, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
