package foodfacts

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const maxLabelFlags = 3

var gradeScores = map[string]int{"a": 3, "b": 2, "c": 1, "d": 0, "e": -1}

// Completeness is the provider's completeness indicator. It arrives as a number, a numeric string or a bool.
type Completeness float64

func (c *Completeness) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte("false")):
		*c = 0
		return nil
	case bytes.Equal(b, []byte("true")):
		*c = 1
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*c = 0
			return nil
		}
		*c = Completeness(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*c = 0
		return nil
	}
	*c = Completeness(f)
	return nil
}

// Int truncates like the provider's own integer coercion.
func (c Completeness) Int() int { return int(c) }

type Product struct {
	Code     string       `json:"code,omitempty"`
	Name     string       `json:"product_name,omitempty"`
	Brands   string       `json:"brands,omitempty"`
	Grade    string       `json:"nutrition_grades,omitempty"`
	Labels   []string     `json:"labels_tags,omitempty"`
	Complete Completeness `json:"complete,omitempty"`
	URL      string       `json:"url,omitempty"`
	Link     string       `json:"link,omitempty"`
}

// IsZero reports whether p is the empty record returned when nothing matched.
func (p Product) IsZero() bool {
	return p.Code == "" && p.Name == "" && p.Brands == "" && p.Grade == "" &&
		len(p.Labels) == 0 && p.Complete == 0 && p.URL == "" && p.Link == ""
}

// Score ranks a candidate: 2*grade + completeness + 1 if labelled.
// A missing grade counts as "c"; an unrecognized grade scores 0.
func Score(p Product) int {
	grade := strings.ToLower(strings.TrimSpace(p.Grade))
	if grade == "" {
		grade = "c"
	}
	score := 2*gradeScores[grade] + p.Complete.Int()
	if len(p.Labels) > 0 {
		score++
	}
	return score
}

// BestMatch scans left to right and replaces the current pick only on a strictly greater score,
// so ties keep the earliest candidate. A candidate must score above -1 to be picked at all.
func BestMatch(products []Product) (Product, bool) {
	best, bestScore, ok := Product{}, -1, false
	for _, p := range products {
		if s := Score(p); s > bestScore {
			best, bestScore, ok = p, s, true
		}
	}
	return best, ok
}

// Flags derives dietary flags: the nutrition grade when it is a-e, then up to three label names
// with their namespace prefix removed.
func Flags(p Product) []string {
	flags := make([]string, 0, 1+maxLabelFlags)

	grade := strings.ToLower(strings.TrimSpace(p.Grade))
	if _, ok := gradeScores[grade]; ok {
		flags = append(flags, "nutrition_grade_"+strings.ToUpper(grade))
	}

	for i, tag := range p.Labels {
		if i == maxLabelFlags {
			break
		}
		if idx := strings.LastIndex(tag, ":"); idx >= 0 {
			tag = tag[idx+1:]
		}
		flags = append(flags, tag)
	}
	return flags
}
