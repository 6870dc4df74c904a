package model

import (
	"fmt"
	"strings"
	"time"
)

// SourceType tells where a piece of context came from.
type SourceType string

const (
	SourceNote     SourceType = "NOTE"
	SourceWhatsApp SourceType = "WHATSAPP"
	SourceEmail    SourceType = "EMAIL"
	SourceMeeting  SourceType = "MEETING"
)

// SourceTypes lists every accepted source in display order.
var SourceTypes = []SourceType{SourceNote, SourceWhatsApp, SourceEmail, SourceMeeting}

// ParseSourceType accepts the canonical names case-insensitively.
func ParseSourceType(raw string) (SourceType, error) {
	value := SourceType(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range SourceTypes {
		if value == known {
			return value, nil
		}
	}
	return "", fmt.Errorf("unknown source type %q", raw)
}

// ContextEntry is a unit of unstructured input (note, chat snippet, email,
// meeting text) used as inference signal. Only ProcessedInsights changes
// after creation.
type ContextEntry struct {
	ID                uint              `gorm:"primaryKey"`
	Content           string            `gorm:"not null"`
	SourceType        SourceType        `gorm:"size:20;not null"`
	ProcessedInsights map[string]string `gorm:"serializer:json"`
	CreatedAt         time.Time         `gorm:"index"`
}

// Processed reports whether insight extraction already ran over the entry.
func (e ContextEntry) Processed() bool {
	return e.ProcessedInsights != nil
}
