package recommend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/gorm"
)

const (
	DecisionTreeFilename     = "onboarding_tree.json"
	AssociationRulesFilename = "basket_rules.json"
)

// Service answers recommendation queries from externally trained artifacts:
// a decision tree over onboarding demographics and a precomputed
// association-rule table mined from historical basket transactions.
// Artifacts are loaded once and cached for the process lifetime.
type Service struct {
	DB        *gorm.DB
	ModelsDir string

	treeOnce  sync.Once
	tree      *DecisionTree
	rulesOnce sync.Once
	rules     []Rule
}

func NewService(db *gorm.DB, modelsDir string) *Service {
	return &Service{DB: db, ModelsDir: modelsDir}
}

func (s *Service) loadArtifact(filename string, out interface{}) error {
	path := filepath.Join(s.ModelsDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("artifact %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("artifact %s: %w", filename, err)
	}
	return nil
}

func (s *Service) decisionTree() *DecisionTree {
	s.treeOnce.Do(func() {
		var tree DecisionTree
		if err := s.loadArtifact(DecisionTreeFilename, &tree); err != nil {
			s.tree = nil
			return
		}
		s.tree = &tree
	})
	return s.tree
}

func (s *Service) associationRules() []Rule {
	s.rulesOnce.Do(func() {
		var doc struct {
			Rules []Rule `json:"rules"`
		}
		if err := s.loadArtifact(AssociationRulesFilename, &doc); err != nil {
			s.rules = nil
			return
		}
		s.rules = doc.Rules
	})
	return s.rules
}
