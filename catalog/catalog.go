// Package catalog holds the static, read-only lookup data of the intake
// workflow: assistance types with their sub-types, and districts with their
// cities.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mbolis/assistance-intake/model"
)

//go:embed catalog.json
var defaultCatalog []byte

type AssistanceType struct {
	model.Option
	SubTypes []model.Option `json:"subTypes"`
}

type District struct {
	model.Place
	Cities []model.Place `json:"cities"`
}

type Catalog struct {
	AssistanceTypes []AssistanceType `json:"assistanceTypes"`
	Districts       []District       `json:"districts"`
}

// Default returns the catalog shipped with the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) (*Catalog, error) {
	cat := &Catalog{}
	if err := json.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("catalog.parse: %w", err)
	}
	return cat, nil
}

// MainType looks a main type up by label, falling back to its id.
func (c *Catalog) MainType(labelOrID string) (AssistanceType, bool) {
	for _, t := range c.AssistanceTypes {
		if t.Label == labelOrID {
			return t, true
		}
	}
	for _, t := range c.AssistanceTypes {
		if t.ID == labelOrID {
			return t, true
		}
	}
	return AssistanceType{}, false
}

// SubType looks a sub-type up by id. The sub-types of mainID are searched
// first; an empty or unknown mainID searches the whole catalog.
func (c *Catalog) SubType(mainID, id string) (model.Option, bool) {
	for _, t := range c.AssistanceTypes {
		if t.ID != mainID {
			continue
		}
		for _, s := range t.SubTypes {
			if s.ID == id {
				return s, true
			}
		}
	}
	for _, t := range c.AssistanceTypes {
		for _, s := range t.SubTypes {
			if s.ID == id {
				return s, true
			}
		}
	}
	return model.Option{}, false
}

func (c *Catalog) District(id string) (District, bool) {
	for _, d := range c.Districts {
		if d.ID == id {
			return d, true
		}
	}
	return District{}, false
}

// City finds a city of the given district, matching by id or, case-insensitively, by name.
func (c *Catalog) City(districtID, idOrName string) (model.Place, bool) {
	d, ok := c.District(districtID)
	if !ok {
		return model.Place{}, false
	}
	for _, city := range d.Cities {
		if city.ID == idOrName || strings.EqualFold(city.Name, idOrName) {
			return city, true
		}
	}
	return model.Place{}, false
}
