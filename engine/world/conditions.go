package world

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Condition is a predicate over player state gating edge traversal.
// The set of variants is closed: HasItem, HasAttribute, MinHP.
type Condition interface {
	isCondition()
}

// HasItem holds when the player carries the item.
type HasItem struct {
	Item string
}

// HasAttribute holds when the player's attribute Key equals Value.
type HasAttribute struct {
	Key   string
	Value string
}

// MinHP holds when the player has at least HP hit points.
type MinHP struct {
	HP int
}

func (HasItem) isCondition()      {}
func (HasAttribute) isCondition() {}
func (MinHP) isCondition()        {}

// ErrMalformedCondition is returned when a serialized condition does not
// carry exactly one known tag.
var ErrMalformedCondition = errors.New("malformed condition")

// Condition tags used by both the save format and the authoring document.
const (
	TagHasItem      = "has_item"
	TagHasAttribute = "has_attribute"
	TagMinHP        = "min_hp"
)

type attributeWire struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// conditionWire is the externally tagged form of a condition:
//
//	- has_item: torch
//	- has_attribute: {key: class, value: mage}
//	- min_hp: 10
type conditionWire struct {
	HasItem      *string        `json:"has_item,omitempty" yaml:"has_item,omitempty"`
	HasAttribute *attributeWire `json:"has_attribute,omitempty" yaml:"has_attribute,omitempty"`
	MinHP        *int           `json:"min_hp,omitempty" yaml:"min_hp,omitempty"`
}

type edgeWire struct {
	Target     string          `json:"target" yaml:"target"`
	Label      string          `json:"label" yaml:"label"`
	Conditions []conditionWire `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

func toWire(c Condition) (conditionWire, error) {
	switch c := c.(type) {
	case HasItem:
		item := c.Item
		return conditionWire{HasItem: &item}, nil
	case HasAttribute:
		return conditionWire{HasAttribute: &attributeWire{Key: c.Key, Value: c.Value}}, nil
	case MinHP:
		hp := c.HP
		return conditionWire{MinHP: &hp}, nil
	default:
		return conditionWire{}, fmt.Errorf("%w: unsupported type %T", ErrMalformedCondition, c)
	}
}

func fromWire(w conditionWire) (Condition, error) {
	var (
		c     Condition
		count int
	)
	if w.HasItem != nil {
		c = HasItem{Item: *w.HasItem}
		count++
	}
	if w.HasAttribute != nil {
		c = HasAttribute{Key: w.HasAttribute.Key, Value: w.HasAttribute.Value}
		count++
	}
	if w.MinHP != nil {
		c = MinHP{HP: *w.MinHP}
		count++
	}
	if count != 1 {
		return nil, fmt.Errorf("%w: expected exactly one of %s, %s, %s", ErrMalformedCondition,
			TagHasItem, TagHasAttribute, TagMinHP)
	}
	return c, nil
}

func (e Edge) toWire() (edgeWire, error) {
	w := edgeWire{Target: e.Target, Label: e.Label}
	for _, c := range e.Conditions {
		cw, err := toWire(c)
		if err != nil {
			return edgeWire{}, fmt.Errorf("edge to %q: %w", e.Target, err)
		}
		w.Conditions = append(w.Conditions, cw)
	}
	return w, nil
}

func (e *Edge) fromWire(w edgeWire) error {
	e.Target = w.Target
	e.Label = w.Label
	e.Conditions = nil
	for i, cw := range w.Conditions {
		c, err := fromWire(cw)
		if err != nil {
			return fmt.Errorf("edge to %q condition %d: %w", w.Target, i, err)
		}
		e.Conditions = append(e.Conditions, c)
	}
	return nil
}

// MarshalJSON encodes the edge with tagged conditions.
func (e Edge) MarshalJSON() ([]byte, error) {
	w, err := e.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes an edge with tagged conditions.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var w edgeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return e.fromWire(w)
}

// MarshalYAML encodes the edge with tagged conditions.
func (e Edge) MarshalYAML() (interface{}, error) {
	return e.toWire()
}

// UnmarshalYAML decodes an edge with tagged conditions.
func (e *Edge) UnmarshalYAML(value *yaml.Node) error {
	var w edgeWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	return e.fromWire(w)
}
