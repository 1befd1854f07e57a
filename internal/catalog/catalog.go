// Package catalog serves the static tour and visa data shipped with the
// site. The data files are fixtures maintained by the content team; nothing
// here talks to the backend.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed data/tours.json
var toursJSON []byte

//go:embed data/visas.json
var visasJSON []byte

const (
	TypeDomestic      = "domestic"
	TypeInternational = "international"
)

// Tour is one catalog entry. Category is the state (domestic) or region
// (international) the tour is filed under.
type Tour struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Duration     string   `json:"duration"`
	Price        float64  `json:"price"`
	Destinations string   `json:"destinations"`
	Highlights   []string `json:"highlights,omitempty"`
	Type         string   `json:"-"`
	Category     string   `json:"-"`
}

// VisaService is one visa offering.
type VisaService struct {
	Country        string   `json:"country"`
	Slug           string   `json:"slug"`
	VisaType       string   `json:"visa_type"`
	Price          float64  `json:"price"`
	ProcessingTime string   `json:"processing_time"`
	Validity       string   `json:"validity"`
	Documents      []string `json:"documents,omitempty"`
}

type toursFile struct {
	Metadata struct {
		TotalTours           int      `json:"total_tours"`
		DomesticTours        int      `json:"domestic_tours"`
		InternationalTours   int      `json:"international_tours"`
		DomesticStates       []string `json:"domestic_states"`
		InternationalRegions []string `json:"international_regions"`
	} `json:"metadata"`
	Data struct {
		Domestic      map[string][]Tour `json:"domestic"`
		International map[string][]Tour `json:"international"`
	} `json:"data"`
}

// Catalog is the loaded, indexed tour and visa data.
type Catalog struct {
	tours  []Tour
	byCode map[string]*Tour
	visas  []VisaService
	bySlug map[string]*VisaService

	domesticStates       []string
	internationalRegions []string
	domesticCount        int
	internationalCount   int
}

// Load parses the embedded data files and builds lookup indexes.
func Load() (*Catalog, error) {
	var tf toursFile
	if err := json.Unmarshal(toursJSON, &tf); err != nil {
		return nil, fmt.Errorf("parse tours data: %w", err)
	}
	var vf struct {
		Visas []VisaService `json:"visas"`
	}
	if err := json.Unmarshal(visasJSON, &vf); err != nil {
		return nil, fmt.Errorf("parse visas data: %w", err)
	}

	c := &Catalog{
		byCode:               make(map[string]*Tour),
		bySlug:               make(map[string]*VisaService),
		domesticStates:       tf.Metadata.DomesticStates,
		internationalRegions: tf.Metadata.InternationalRegions,
	}

	add := func(typ string, grouped map[string][]Tour) {
		cats := make([]string, 0, len(grouped))
		for cat := range grouped {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			for _, t := range grouped[cat] {
				t.Type = typ
				t.Category = cat
				t.Code = strings.ToUpper(t.Code)
				c.tours = append(c.tours, t)
			}
		}
	}
	add(TypeDomestic, tf.Data.Domestic)
	add(TypeInternational, tf.Data.International)

	for i := range c.tours {
		t := &c.tours[i]
		if _, dup := c.byCode[t.Code]; dup {
			return nil, fmt.Errorf("duplicate tour code %q", t.Code)
		}
		c.byCode[t.Code] = t
		if t.Type == TypeDomestic {
			c.domesticCount++
		} else {
			c.internationalCount++
		}
	}

	c.visas = vf.Visas
	for i := range c.visas {
		v := &c.visas[i]
		if v.Slug == "" {
			v.Slug = strings.ToLower(strings.ReplaceAll(v.Country, " ", "-"))
		}
		c.bySlug[v.Slug] = v
	}

	return c, nil
}

// All returns every tour, domestic first, grouped by category, priced
// ascending within each group.
func (c *Catalog) All() []Tour {
	out := make([]Tour, len(c.tours))
	copy(out, c.tours)
	sortTours(out)
	return out
}

// Filter returns tours matching the given type and/or category; empty or
// "all" values match everything.
func (c *Catalog) Filter(typ, category string) []Tour {
	var out []Tour
	for _, t := range c.tours {
		if typ != "" && typ != "all" && t.Type != typ {
			continue
		}
		if category != "" && category != "all" && !strings.EqualFold(t.Category, category) {
			continue
		}
		out = append(out, t)
	}
	sortTours(out)
	return out
}

// Search matches q case-insensitively against tour name, destinations, and
// code. An empty query returns everything.
func (c *Catalog) Search(q string) []Tour {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return c.All()
	}
	var out []Tour
	for _, t := range c.tours {
		if strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Destinations), q) ||
			strings.Contains(strings.ToLower(t.Code), q) {
			out = append(out, t)
		}
	}
	sortTours(out)
	return out
}

// FindByCode returns the tour for the code (case-insensitive), or nil.
func (c *Catalog) FindByCode(code string) *Tour {
	t, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

// Categories returns the category list for a tour type; with typ "all" it
// returns both lists concatenated.
func (c *Catalog) Categories(typ string) []string {
	switch typ {
	case TypeDomestic:
		return append([]string(nil), c.domesticStates...)
	case TypeInternational:
		return append([]string(nil), c.internationalRegions...)
	default:
		out := append([]string(nil), c.domesticStates...)
		return append(out, c.internationalRegions...)
	}
}

// Counts returns (total, domestic, international) tour counts.
func (c *Catalog) Counts() (int, int, int) {
	return len(c.tours), c.domesticCount, c.internationalCount
}

// Visas returns all visa services.
func (c *Catalog) Visas() []VisaService {
	out := make([]VisaService, len(c.visas))
	copy(out, c.visas)
	return out
}

// VisaBySlug returns the visa service for a country slug, or nil.
func (c *Catalog) VisaBySlug(slug string) *VisaService {
	v, ok := c.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return nil
	}
	cp := *v
	return &cp
}

func sortTours(tours []Tour) {
	sort.SliceStable(tours, func(i, j int) bool {
		if tours[i].Type != tours[j].Type {
			return tours[i].Type == TypeDomestic
		}
		if tours[i].Category != tours[j].Category {
			return tours[i].Category < tours[j].Category
		}
		return tours[i].Price < tours[j].Price
	})
}
