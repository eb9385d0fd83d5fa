package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Query documents may give the price bound as a number or as a numeric
// string ("price": "100"). Both go through ParsePrice, so a string accepts
// the same forms as a price column. Any other value fails the document.

// UnmarshalJSON decodes a query object, accepting a string price.
func (q *Query) UnmarshalJSON(data []byte) error {
	type plain Query
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(q)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.Price)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		q.Price = nil
		return nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
	} else {
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("price %s: %w", raw, ErrInvalidNumber)
		}
		q.Price = &f
		return nil
	}

	price, err := ParsePrice(text)
	if err != nil {
		return fmt.Errorf("price %q: %w", text, err)
	}
	q.Price = &price
	return nil
}

// UnmarshalYAML decodes a query mapping, accepting a quoted price.
func (q *Query) UnmarshalYAML(node *yaml.Node) error {
	type plain Query
	if node.Kind != yaml.MappingNode {
		return node.Decode((*plain)(q))
	}

	rest := *node
	rest.Content = nil
	var priceNode *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "price" {
			priceNode = node.Content[i+1]
			continue
		}
		rest.Content = append(rest.Content, node.Content[i], node.Content[i+1])
	}

	if err := rest.Decode((*plain)(q)); err != nil {
		return err
	}

	q.Price = nil
	if priceNode == nil || priceNode.Tag == "!!null" {
		return nil
	}
	if priceNode.Kind != yaml.ScalarNode {
		return fmt.Errorf("price at line %d: %w", priceNode.Line, ErrInvalidNumber)
	}

	price, err := ParsePrice(priceNode.Value)
	if err != nil {
		return fmt.Errorf("price %q at line %d: %w", priceNode.Value, priceNode.Line, err)
	}
	q.Price = &price
	return nil
}
