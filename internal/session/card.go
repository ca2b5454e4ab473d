package session

import (
	"maps"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
)

// CardSnapshot is the part of a card the chat needs to re-render it without a query.
type CardSnapshot struct {
	ID            string                     `json:"id"`
	CategoryID    string                     `json:"categoryId,omitempty"`
	Questions     map[models.Language]string `json:"questions"`
	CategoryNames map[models.Language]string `json:"categoryNames,omitempty"`
	Status        models.CardStatus          `json:"status,omitempty"`
}

func SnapshotOf(c models.Card, status models.CardStatus) *CardSnapshot {
	if status == "" {
		status = models.StatusActive
	}
	snap := &CardSnapshot{
		ID:         c.ID,
		CategoryID: c.CategoryID,
		Questions:  map[models.Language]string{},
		Status:     status,
	}
	for _, l := range models.Languages {
		if q := c.Question(l); q != "" {
			snap.Questions[l] = q
		}
	}
	if c.Category.ID != "" {
		snap.CategoryNames = map[models.Language]string{}
		for _, l := range models.Languages {
			if n := c.Category.Name(l); n != "" {
				snap.CategoryNames[l] = n
			}
		}
	}
	return snap
}

func (c *CardSnapshot) Question(lang models.Language) string {
	return pick(c.Questions, lang)
}

func (c *CardSnapshot) CategoryName(lang models.Language) string {
	return pick(c.CategoryNames, lang)
}

func (c *CardSnapshot) clone() *CardSnapshot {
	if c == nil {
		return nil
	}
	out := *c
	out.Questions = maps.Clone(c.Questions)
	out.CategoryNames = maps.Clone(c.CategoryNames)
	return &out
}

func pick(m map[models.Language]string, lang models.Language) string {
	if v := m[lang]; v != "" {
		return v
	}
	return m[models.English]
}
