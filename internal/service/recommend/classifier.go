package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/auroramart/storefront/internal/logging"
	"github.com/auroramart/storefront/internal/models"
)

// Onboarding demographics fed to the classifier, in the order the model
// was trained with.
type OnboardingData struct {
	Age              uint    `json:"age"`
	Gender           string  `json:"gender"`
	EmploymentStatus string  `json:"employment_status"`
	Occupation       string  `json:"occupation"`
	Education        string  `json:"education"`
	HouseholdSize    uint    `json:"household_size"`
	HasChildren      bool    `json:"has_children"`
	MonthlyIncomeSGD float64 `json:"monthly_income_sgd"`
}

// DecisionTree is a serialized classifier. Nodes live in a flat slice,
// the root is node 0. Interior nodes split either on a numeric threshold
// (value <= threshold goes left) or on categorical equality (match goes
// left). Leaves carry the predicted category label.
type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
	Feature   string   `json:"feature,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Match     string   `json:"match,omitempty"`
	Left      int      `json:"left,omitempty"`
	Right     int      `json:"right,omitempty"`
	Label     string   `json:"label,omitempty"`
}

func (d *OnboardingData) numericFeature(name string) (float64, bool) {
	switch name {
	case "age":
		return float64(d.Age), true
	case "household_size":
		return float64(d.HouseholdSize), true
	case "has_children":
		if d.HasChildren {
			return 1, true
		}
		return 0, true
	case "monthly_income_sgd":
		return d.MonthlyIncomeSGD, true
	}
	return 0, false
}

func (d *OnboardingData) categoricalFeature(name string) (string, bool) {
	switch name {
	case "gender":
		return d.Gender, true
	case "employment_status":
		return d.EmploymentStatus, true
	case "occupation":
		return d.Occupation, true
	case "education":
		return d.Education, true
	}
	return "", false
}

func (t *DecisionTree) Predict(data *OnboardingData) (string, error) {
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if idx < 0 || idx >= len(t.Nodes) {
			return "", fmt.Errorf("node index %d out of range", idx)
		}
		node := t.Nodes[idx]
		if node.Label != "" {
			return node.Label, nil
		}
		if node.Threshold != nil {
			v, ok := data.numericFeature(node.Feature)
			if !ok {
				return "", fmt.Errorf("unknown numeric feature %q", node.Feature)
			}
			if v <= *node.Threshold {
				idx = node.Left
			} else {
				idx = node.Right
			}
			continue
		}
		v, ok := data.categoricalFeature(node.Feature)
		if !ok {
			return "", fmt.Errorf("unknown categorical feature %q", node.Feature)
		}
		if strings.EqualFold(v, node.Match) {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return "", fmt.Errorf("cycle in decision tree")
}

// PredictPreferredCategory returns the predicted preferred category label,
// or "" when neither the model nor the heuristic can produce one.
func (s *Service) PredictPreferredCategory(ctx context.Context, data *OnboardingData) string {
	log := logging.FromContext(ctx)

	tree := s.decisionTree()
	if tree == nil {
		log.Info("decision tree artifact unavailable, using heuristic prediction")
		return s.heuristicPrediction(data)
	}

	label, err := tree.Predict(data)
	if err != nil {
		log.Error("decision tree prediction failed", "error", err)
		return s.heuristicPrediction(data)
	}
	return label
}

func (s *Service) heuristicPrediction(data *OnboardingData) string {
	gender := strings.ToLower(data.Gender)
	if strings.Contains(gender, "female") {
		return "Beauty & Personal Care"
	}
	if strings.Contains(gender, "male") {
		return "Electronics"
	}

	var category models.Category
	if err := s.DB.Order("name ASC").First(&category).Error; err != nil {
		return ""
	}
	return category.Name
}
