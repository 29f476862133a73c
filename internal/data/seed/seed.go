package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/mindcheck-backend/internal/data/repos"
	types "github.com/yungbote/mindcheck-backend/internal/domain"
	kdomain "github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
	"github.com/yungbote/mindcheck-backend/internal/platform/dbctx"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

// SeedFileEnv points at a YAML file that replaces the embedded default.
const SeedFileEnv = "KB_SEED_YAML"

//go:embed knowledge_base.yaml
var seedFS embed.FS

type File struct {
	Version   int            `yaml:"version"`
	Symptoms  []SymptomSeed  `yaml:"symptoms"`
	Disorders []DisorderSeed `yaml:"disorders"`
	Rules     []RuleSeed     `yaml:"rules"`
}

type SymptomSeed struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
}

type DisorderSeed struct {
	Code           string `yaml:"code"`
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Recommendation string `yaml:"recommendation"`
}

type RuleSeed struct {
	Code     string   `yaml:"code"`
	Disorder string   `yaml:"disorder"`
	Symptoms []string `yaml:"symptoms"`
}

// Stats counts the rows Apply inserted.
type Stats struct {
	Symptoms  int
	Disorders int
	Rules     int
}

// Load reads the seed from SeedFileEnv when set, else the embedded default.
func Load() (*File, error) {
	var (
		data []byte
		err  error
	)
	if path := strings.TrimSpace(os.Getenv(SeedFileEnv)); path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = seedFS.ReadFile("knowledge_base.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	var errs []error
	symptoms := map[string]bool{}
	for i := range f.Symptoms {
		s := &f.Symptoms[i]
		s.Code = kdomain.NormalizeCode(s.Code)
		if s.Code == "" || strings.TrimSpace(s.Description) == "" {
			errs = append(errs, fmt.Errorf("symptom #%d: code and description are required", i+1))
			continue
		}
		if symptoms[s.Code] {
			errs = append(errs, fmt.Errorf("symptom %s: duplicate code", s.Code))
		}
		symptoms[s.Code] = true
	}
	disorders := map[string]bool{}
	for i := range f.Disorders {
		d := &f.Disorders[i]
		d.Code = kdomain.NormalizeCode(d.Code)
		if d.Code == "" || strings.TrimSpace(d.Name) == "" {
			errs = append(errs, fmt.Errorf("disorder #%d: code and name are required", i+1))
			continue
		}
		if disorders[d.Code] {
			errs = append(errs, fmt.Errorf("disorder %s: duplicate code", d.Code))
		}
		disorders[d.Code] = true
	}
	rules := map[string]bool{}
	for i := range f.Rules {
		r := &f.Rules[i]
		r.Code = kdomain.NormalizeCode(r.Code)
		r.Disorder = kdomain.NormalizeCode(r.Disorder)
		r.Symptoms = kdomain.NormalizeCodes(r.Symptoms)
		if r.Code == "" {
			errs = append(errs, fmt.Errorf("rule #%d: code is required", i+1))
			continue
		}
		if rules[r.Code] {
			errs = append(errs, fmt.Errorf("rule %s: duplicate code", r.Code))
		}
		rules[r.Code] = true
		if !disorders[r.Disorder] {
			errs = append(errs, fmt.Errorf("rule %s: unknown disorder %q", r.Code, r.Disorder))
		}
		if len(r.Symptoms) == 0 {
			errs = append(errs, fmt.Errorf("rule %s: at least one symptom is required", r.Code))
		}
		for _, c := range r.Symptoms {
			if !symptoms[c] {
				errs = append(errs, fmt.Errorf("rule %s: unknown symptom %q", r.Code, c))
			}
		}
	}
	return errors.Join(errs...)
}

// Apply inserts every seed row whose code is not stored yet. Existing rows are
// left untouched so admin edits survive a re-seed.
func Apply(ctx context.Context, db *gorm.DB, f *File, baseLog *logger.Logger) (Stats, error) {
	log := baseLog.With("component", "KnowledgeBaseSeed")
	var stats Stats
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		symptomRepo := repos.NewSymptomRepo(db, baseLog)
		disorderRepo := repos.NewDisorderRepo(db, baseLog)
		ruleRepo := repos.NewRuleRepo(db, baseLog)

		existingSymptoms, err := symptomRepo.List(dbc)
		if err != nil {
			return err
		}
		haveSymptom := make(map[string]bool, len(existingSymptoms))
		for _, s := range existingSymptoms {
			haveSymptom[s.Code] = true
		}
		var newSymptoms []*types.Symptom
		for _, s := range f.Symptoms {
			if !haveSymptom[s.Code] {
				newSymptoms = append(newSymptoms, &types.Symptom{Code: s.Code, Description: strings.TrimSpace(s.Description)})
			}
		}
		if _, err := symptomRepo.Create(dbc, newSymptoms); err != nil {
			return fmt.Errorf("seed symptoms: %w", err)
		}
		stats.Symptoms = len(newSymptoms)

		existingDisorders, err := disorderRepo.List(dbc)
		if err != nil {
			return err
		}
		disorderIDs := make(map[string]*types.MentalDisorder, len(existingDisorders))
		for _, d := range existingDisorders {
			disorderIDs[d.Code] = d
		}
		var newDisorders []*types.MentalDisorder
		for _, d := range f.Disorders {
			if _, ok := disorderIDs[d.Code]; ok {
				continue
			}
			md := &types.MentalDisorder{
				Code:           d.Code,
				Name:           strings.TrimSpace(d.Name),
				Description:    strings.TrimSpace(d.Description),
				Recommendation: strings.TrimSpace(d.Recommendation),
			}
			newDisorders = append(newDisorders, md)
			disorderIDs[d.Code] = md
		}
		if _, err := disorderRepo.Create(dbc, newDisorders); err != nil {
			return fmt.Errorf("seed disorders: %w", err)
		}
		stats.Disorders = len(newDisorders)

		existingRules, err := ruleRepo.List(dbc, nil)
		if err != nil {
			return err
		}
		haveRule := make(map[string]bool, len(existingRules))
		for _, r := range existingRules {
			haveRule[r.RuleCode] = true
		}
		var newRules []*types.DiagnosisRule
		for _, r := range f.Rules {
			if haveRule[r.Code] {
				continue
			}
			newRules = append(newRules, &types.DiagnosisRule{
				RuleCode:         r.Code,
				MentalDisorderID: disorderIDs[r.Disorder].ID,
				SymptomCodes:     datatypes.JSONSlice[string](r.Symptoms),
			})
		}
		if _, err := ruleRepo.Create(dbc, newRules); err != nil {
			return fmt.Errorf("seed rules: %w", err)
		}
		stats.Rules = len(newRules)
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	log.Info("knowledge base seeded", "symptoms", stats.Symptoms, "disorders", stats.Disorders, "rules", stats.Rules)
	return stats, nil
}
