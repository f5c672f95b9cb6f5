// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package selection picks a model from the capability catalog for a
// content type, task and cost preference.
package selection

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/poiesic/secondbrain/ai"
)

// ErrCatalogRequired is returned when a Selector is built without a catalog.
var ErrCatalogRequired = errors.New("capability catalog is required")

// Request describes what the caller needs.
type Request struct {
	ContentType ai.ContentType
	Task        ai.TaskType // Zero means no task preference

	// Preference steers ranking. Zero uses the selector's default.
	Preference ai.CostPreference

	// ModelOverride names a catalog model to use without scoring.
	ModelOverride string

	// ContentSize excludes models whose MaxTokens is smaller. Zero disables the filter.
	ContentSize int

	RequiredFeatures []ai.Feature
}

// Selector ranks catalog models. It holds no mutable state.
type Selector struct {
	catalog    *ai.Catalog
	preference ai.CostPreference
}

// New creates a selector over catalog. defaultPreference applies to requests
// that leave Preference unset; zero means balanced.
func New(catalog *ai.Catalog, defaultPreference ai.CostPreference) (*Selector, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	if defaultPreference == 0 {
		defaultPreference = ai.PreferBalanced
	}
	return &Selector{catalog: catalog, preference: defaultPreference}, nil
}

// Catalog returns the catalog the selector ranks.
func (s *Selector) Catalog() *ai.Catalog {
	return s.catalog
}

// Select returns the single best model for req.
//
// An explicit override is returned as-is when the catalog knows it and is
// otherwise a configuration error wrapping ai.ErrUnknownModel. An empty
// candidate set is a configuration error wrapping ai.ErrNoEligibleModel.
func (s *Selector) Select(req Request) (ai.ModelCapability, error) {
	if req.ModelOverride != "" {
		m, ok := s.catalog.Lookup(req.ModelOverride)
		if !ok {
			return ai.ModelCapability{}, ai.NewError(ai.KindConfiguration, 0,
				fmt.Sprintf("model %q", req.ModelOverride), ai.ErrUnknownModel)
		}
		return m, nil
	}

	ranked, err := s.Rank(req)
	if err != nil {
		return ai.ModelCapability{}, err
	}
	return ranked[0], nil
}

// Rank returns every eligible model, best first.
func (s *Selector) Rank(req Request) ([]ai.ModelCapability, error) {
	candidates := s.eligible(req)
	if len(candidates) == 0 {
		return nil, noEligible(req)
	}

	pref := req.Preference
	if pref == 0 {
		pref = s.preference
	}
	if pref == ai.PreferFreeOnly {
		candidates = slices.DeleteFunc(candidates, func(m ai.ModelCapability) bool { return !m.IsFree() })
		if len(candidates) == 0 {
			return nil, noEligible(req)
		}
	}

	byPreference := comparator(pref)
	slices.SortStableFunc(candidates, func(a, b ai.ModelCapability) int {
		if req.Task != 0 {
			if c := compareBool(a.Recommends(req.Task), b.Recommends(req.Task)); c != 0 {
				return c
			}
		}
		if c := byPreference(a, b); c != 0 {
			return c
		}
		return cmp.Compare(b.Reliability, a.Reliability)
	})
	return candidates, nil
}

// Fallbacks lists the other eligible models for req, excluding primary,
// ordered by reliability and then by closeness of cost tier to primary.
// A free-only preference keeps fallbacks in the free tier.
func (s *Selector) Fallbacks(primary ai.ModelCapability, req Request) []ai.ModelCapability {
	freeOnly := req.Preference == ai.PreferFreeOnly || (req.Preference == 0 && s.preference == ai.PreferFreeOnly)
	out := slices.DeleteFunc(s.eligible(req), func(m ai.ModelCapability) bool {
		return m.ID == primary.ID || (freeOnly && !m.IsFree())
	})
	slices.SortStableFunc(out, func(a, b ai.ModelCapability) int {
		if c := cmp.Compare(b.Reliability, a.Reliability); c != 0 {
			return c
		}
		return cmp.Compare(tierDistance(a, primary), tierDistance(b, primary))
	})
	return out
}

func (s *Selector) eligible(req Request) []ai.ModelCapability {
	var out []ai.ModelCapability
	for _, m := range s.catalog.Models() {
		if !m.Supports(req.ContentType) {
			continue
		}
		if req.ContentSize > 0 && m.MaxTokens < req.ContentSize {
			continue
		}
		if !hasAll(m, req.RequiredFeatures) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func hasAll(m ai.ModelCapability, features []ai.Feature) bool {
	for _, f := range features {
		if !m.HasFeature(f) {
			return false
		}
	}
	return true
}

func noEligible(req Request) error {
	return ai.NewError(ai.KindConfiguration, 0,
		fmt.Sprintf("content type %s", req.ContentType), ai.ErrNoEligibleModel)
}

// comparator orders two models by cost preference; negative means a ranks first.
func comparator(pref ai.CostPreference) func(a, b ai.ModelCapability) int {
	switch pref {
	case ai.PreferFree:
		return func(a, b ai.ModelCapability) int {
			if c := cmp.Compare(a.CostTier, b.CostTier); c != 0 {
				return c
			}
			return cmp.Compare(b.Reliability, a.Reliability)
		}
	case ai.PreferQuality:
		return func(a, b ai.ModelCapability) int {
			if c := cmp.Compare(b.Reliability, a.Reliability); c != 0 {
				return c
			}
			return cmp.Compare(a.CostTier, b.CostTier)
		}
	case ai.PreferFreeOnly:
		return func(a, b ai.ModelCapability) int {
			return cmp.Compare(b.Reliability, a.Reliability)
		}
	default:
		return func(a, b ai.ModelCapability) int {
			return cmp.Compare(BalancedScore(b), BalancedScore(a))
		}
	}
}

// BalancedScore is reliability divided by a per-tier cost factor.
func BalancedScore(m ai.ModelCapability) float64 {
	return m.Reliability / costFactor(m.CostTier)
}

func costFactor(t ai.CostTier) float64 {
	switch t {
	case ai.CostFree:
		return 0.5
	case ai.CostLow:
		return 1
	case ai.CostMedium:
		return 2
	default:
		return 3
	}
}

func tierDistance(m, primary ai.ModelCapability) int {
	d := int(m.CostTier) - int(primary.CostTier)
	if d < 0 {
		return -d
	}
	return d
}

// compareBool ranks true before false.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}
