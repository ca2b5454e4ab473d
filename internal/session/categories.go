package session

import (
	"encoding/json"
	"slices"
)

// CategorySelection distinguishes "not chosen yet" from "chosen, possibly
// empty". The zero value is unset and serializes as JSON null.
type CategorySelection struct {
	set bool
	ids []string
}

func Unset() CategorySelection {
	return CategorySelection{}
}

func Selected(ids ...string) CategorySelection {
	out := CategorySelection{set: true, ids: make([]string, 0, len(ids))}
	for _, id := range ids {
		if !slices.Contains(out.ids, id) {
			out.ids = append(out.ids, id)
		}
	}
	return out
}

func (c CategorySelection) IsSet() bool { return c.set }

func (c CategorySelection) Len() int { return len(c.ids) }

func (c CategorySelection) IDs() []string {
	return slices.Clone(c.ids)
}

func (c CategorySelection) Contains(id string) bool {
	return slices.Contains(c.ids, id)
}

// Toggle flips membership of id, keeping insertion order. The result is always set.
func (c CategorySelection) Toggle(id string) CategorySelection {
	if c.Contains(id) {
		return Selected(slices.DeleteFunc(slices.Clone(c.ids), func(v string) bool { return v == id })...)
	}
	return Selected(append(slices.Clone(c.ids), id)...)
}

func (c CategorySelection) clone() CategorySelection {
	return CategorySelection{set: c.set, ids: slices.Clone(c.ids)}
}

func (c CategorySelection) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	ids := c.ids
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

func (c *CategorySelection) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = Unset()
		return nil
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*c = Selected(ids...)
	return nil
}
