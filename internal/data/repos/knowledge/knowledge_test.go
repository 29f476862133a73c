package knowledge

import (
	"context"
	"testing"

	"github.com/yungbote/mindcheck-backend/internal/data/db"
	"github.com/yungbote/mindcheck-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mindcheck-backend/internal/domain"
	"github.com/yungbote/mindcheck-backend/internal/platform/dbctx"
)

func TestSymptomRepo(t *testing.T) {
	database := testutil.DB(t)
	tx := testutil.Tx(t, database)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewSymptomRepo(database, testutil.Logger(t))
	created, err := repo.Create(dbc, []*types.Symptom{
		{Code: "G10", Description: "ten"},
		{Code: "G2", Description: "two"},
		{Code: "G1", Description: "one"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Create: want=3 got=%d", len(created))
	}

	list, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].Code != "G1" || list[1].Code != "G2" || list[2].Code != "G10" {
		t.Fatalf("List: unexpected order: %+v", list)
	}

	if err := repo.UpdateDescription(dbc, created[1].ID, "two, edited"); err != nil {
		t.Fatalf("UpdateDescription: %v", err)
	}
	got, err := repo.GetByID(dbc, created[1].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Description != "two, edited" || got.Code != "G2" {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	byCode, err := repo.GetByCodes(dbc, []string{"G1", "G99"})
	if err != nil {
		t.Fatalf("GetByCodes: %v", err)
	}
	if len(byCode) != 1 {
		t.Fatalf("GetByCodes: want=1 got=%d", len(byCode))
	}

	_, err = repo.Create(dbc, []*types.Symptom{{Code: "G1", Description: "dup"}})
	if !db.IsUniqueViolation(err) {
		t.Fatalf("Create duplicate: want unique violation, got %v", err)
	}
}

func TestSymptomRepoDelete(t *testing.T) {
	database := testutil.DB(t)
	tx := testutil.Tx(t, database)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewSymptomRepo(database, testutil.Logger(t))
	s := testutil.SeedSymptom(t, ctx, tx, "G5")
	if err := repo.Delete(dbc, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := repo.GetByID(dbc, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByID after delete: want nil got %+v", got)
	}
}

func TestDisorderRepo(t *testing.T) {
	database := testutil.DB(t)
	tx := testutil.Tx(t, database)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewDisorderRepo(database, testutil.Logger(t))
	d := testutil.SeedDisorder(t, ctx, tx, "P3", "Major Depressive Disorder")
	testutil.SeedDisorder(t, ctx, tx, "P1", "Generalized Anxiety Disorder")

	got, err := repo.GetByCode(dbc, "P3")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got == nil || got.ID != d.ID {
		t.Fatalf("GetByCode: unexpected result: %+v", got)
	}

	if err := repo.UpdateFields(dbc, d.ID, map[string]interface{}{"recommendation": "new advice"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err = repo.GetByID(dbc, d.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Recommendation != "new advice" {
		t.Fatalf("UpdateFields: want=%q got=%q", "new advice", got.Recommendation)
	}

	list, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Code != "P1" {
		t.Fatalf("List: unexpected result: %+v", list)
	}

	missing, err := repo.GetByCode(dbc, "P9")
	if err != nil || missing != nil {
		t.Fatalf("GetByCode missing: want nil,nil got %+v,%v", missing, err)
	}
}

func TestRuleRepo(t *testing.T) {
	database := testutil.DB(t)
	tx := testutil.Tx(t, database)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewRuleRepo(database, testutil.Logger(t))
	p1 := testutil.SeedDisorder(t, ctx, tx, "P1", "Generalized Anxiety Disorder")
	p3 := testutil.SeedDisorder(t, ctx, tx, "P3", "Major Depressive Disorder")
	r10 := testutil.SeedRule(t, ctx, tx, "R10", p3.ID, "G4", "G5")
	testutil.SeedRule(t, ctx, tx, "R2", p1.ID, "G1", "G2", "G3")
	testutil.SeedRule(t, ctx, tx, "R1", p1.ID, "G1")

	all, err := repo.List(dbc, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].RuleCode != "R1" || all[2].RuleCode != "R10" {
		t.Fatalf("List: unexpected order: %+v", all)
	}

	forP1, err := repo.List(dbc, &p1.ID)
	if err != nil {
		t.Fatalf("List(p1): %v", err)
	}
	if len(forP1) != 2 {
		t.Fatalf("List(p1): want=2 got=%d", len(forP1))
	}

	n, err := repo.CountByDisorder(dbc, p3.ID)
	if err != nil {
		t.Fatalf("CountByDisorder: %v", err)
	}
	if n != 1 {
		t.Fatalf("CountByDisorder: want=1 got=%d", n)
	}

	refs, err := repo.ListReferencing(dbc, "G1")
	if err != nil {
		t.Fatalf("ListReferencing: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("ListReferencing: want=2 got=%d", len(refs))
	}

	r10.SymptomCodes = append(r10.SymptomCodes, "G6")
	if err := repo.Save(dbc, r10); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.GetByID(dbc, r10.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.SymptomCodes) != 3 || got.SymptomCodes[2] != "G6" {
		t.Fatalf("Save: unexpected symptom codes: %v", got.SymptomCodes)
	}

	if err := repo.Delete(dbc, r10.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	n, err = repo.CountByDisorder(dbc, p3.ID)
	if err != nil || n != 0 {
		t.Fatalf("CountByDisorder after delete: want=0 got=%d err=%v", n, err)
	}
}
