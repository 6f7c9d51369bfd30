package recommend

import (
	"context"
	"sort"

	"github.com/auroramart/storefront/internal/logging"
	"github.com/auroramart/storefront/internal/models"
)

// Rule is a precomputed antecedent -> consequent co-occurrence mapping
// mined offline from historical basket transactions.
type Rule struct {
	Antecedents []string `json:"antecedents"`
	Consequents []string `json:"consequents"`
	Support     float64  `json:"support"`
	Confidence  float64  `json:"confidence"`
	Lift        float64  `json:"lift"`
}

func (r *Rule) hasAntecedent(sku string) bool {
	for _, a := range r.Antecedents {
		if a == sku {
			return true
		}
	}
	return false
}

const topRulesPerSKU = 5

// RecommendAssociated returns up to limit "complete the set" products for
// the given basket SKUs. Every input SKU contributes consequents from its
// best-confidence rules; duplicates and products already in the basket are
// dropped, and any remaining slots are filled from the top-rated fallback.
func (s *Service) RecommendAssociated(ctx context.Context, basketSKUs []string, limit int) []models.Product {
	log := logging.FromContext(ctx)
	if limit <= 0 {
		limit = 4
	}

	seen := map[string]bool{}
	skus := make([]string, 0, len(basketSKUs))
	for _, sku := range basketSKUs {
		if sku == "" || seen[sku] {
			continue
		}
		seen[sku] = true
		skus = append(skus, sku)
	}

	rules := s.associationRules()
	if rules == nil {
		log.Info("association rules artifact unavailable, using fallback")
		return s.fallbackRecommendations(skus, nil, limit)
	}

	var suggestions []string
	matched := 0
	for _, sku := range skus {
		var hits []Rule
		for _, r := range rules {
			if r.hasAntecedent(sku) {
				hits = append(hits, r)
			}
		}
		if len(hits) == 0 {
			continue
		}
		matched++
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].Confidence > hits[j].Confidence
		})
		if len(hits) > topRulesPerSKU {
			hits = hits[:topRulesPerSKU]
		}
		for _, r := range hits {
			suggestions = append(suggestions, r.Consequents...)
		}
	}
	log.Debug("association lookup",
		"input_skus", len(skus), "matched", matched, "raw_suggestions", len(suggestions))

	picked := map[string]bool{}
	var uniqueSKUs []string
	for _, sku := range suggestions {
		if seen[sku] || picked[sku] {
			continue
		}
		picked[sku] = true
		uniqueSKUs = append(uniqueSKUs, sku)
		if len(uniqueSKUs) == limit {
			break
		}
	}

	var found []models.Product
	if len(uniqueSKUs) > 0 {
		if err := s.DB.Where("sku IN ? AND is_active = ?", uniqueSKUs, true).Find(&found).Error; err != nil {
			log.Error("association product lookup failed", "error", err)
			found = nil
		}
	}

	// keep rule order rather than database order
	bySKU := map[string]models.Product{}
	for _, p := range found {
		bySKU[p.SKU] = p
	}
	products := make([]models.Product, 0, limit)
	for _, sku := range uniqueSKUs {
		if p, ok := bySKU[sku]; ok {
			products = append(products, p)
		}
	}

	if len(products) < limit {
		products = append(products, s.fallbackRecommendations(skus, products, limit-len(products))...)
	}
	if len(products) > limit {
		products = products[:limit]
	}
	return products
}

// fallbackRecommendations picks the best-rated in-stock products that are
// neither in the basket nor already recommended.
func (s *Service) fallbackRecommendations(basketSKUs []string, already []models.Product, limit int) []models.Product {
	if limit <= 0 {
		return nil
	}
	exclude := make([]string, 0, len(basketSKUs)+len(already))
	exclude = append(exclude, basketSKUs...)
	for _, p := range already {
		exclude = append(exclude, p.SKU)
	}

	q := s.DB.Where("is_active = ?", true)
	if len(exclude) > 0 {
		q = q.Where("sku NOT IN ?", exclude)
	}

	var products []models.Product
	if err := q.Order("rating DESC NULLS LAST").
		Order("quantity_on_hand DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil
	}
	return products
}
