// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package rules

import (
	"strings"
	"testing"

	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/mining"
)

func rule(ante, cons string, conf float64) mining.AssociationRule {
	return mining.AssociationRule{
		Antecedent: basket.NewItemSet(strings.Split(ante, ",")...),
		Consequent: basket.NewItemSet(strings.Split(cons, ",")...),
		Confidence: conf,
	}
}

func TestBuild_Empty(t *testing.T) {
	table := Build(nil)
	if !table.Empty() {
		t.Errorf("Empty() = false, want true")
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
	if _, ok := table.Lookup(basket.NewItemSet("A")); ok {
		t.Error("Lookup() on empty table found a row")
	}
}

func TestBuild_SortedByProbaDescending(t *testing.T) {
	table := Build([]mining.AssociationRule{
		rule("A", "B", 0.2),
		rule("B", "C", 0.9),
		rule("C", "A", 0.5),
		rule("A,B", "C", 0.5),
		rule("D", "E", 1.0),
	})

	rows := table.Rows()
	if len(rows) != 5 {
		t.Fatalf("Rows() len = %d, want 5", len(rows))
	}
	for i := 0; i+1 < len(rows); i++ {
		if rows[i].Proba < rows[i+1].Proba {
			t.Errorf("row[%d].Proba = %v < row[%d].Proba = %v", i, rows[i].Proba, i+1, rows[i+1].Proba)
		}
	}

	// Ties keep mining order
	if !rows[2].Basket.Equal(basket.NewItemSet("C")) || !rows[3].Basket.Equal(basket.NewItemSet("A", "B")) {
		t.Errorf("tie order = %v, %v, want {C}, {A, B}", rows[2].Basket, rows[3].Basket)
	}
}

func TestTable_LookupReturnsBestRow(t *testing.T) {
	table := Build([]mining.AssociationRule{
		rule("A", "B", 0.3),
		rule("A", "C", 0.7),
		rule("B,A", "D", 0.4),
	})

	row, ok := table.Lookup(basket.NewItemSet("A"))
	if !ok {
		t.Fatal("Lookup({A}) not found")
	}
	if !row.NextProduct.Equal(basket.NewItemSet("C")) || row.Proba != 0.7 {
		t.Errorf("Lookup({A}) = %+v, want C at 0.7", row)
	}

	row, ok = table.Lookup(basket.NewItemSet("A", "B"))
	if !ok || row.NextProduct.First() != "D" {
		t.Errorf("Lookup({A,B}) = %+v (found %v), want D", row, ok)
	}

	if table.Antecedents() != 2 {
		t.Errorf("Antecedents() = %d, want 2", table.Antecedents())
	}
}

func TestTable_RowsReturnsCopy(t *testing.T) {
	table := Build([]mining.AssociationRule{rule("A", "B", 0.5)})

	rows := table.Rows()
	rows[0].Proba = 0.1

	if table.Rows()[0].Proba != 0.5 {
		t.Error("mutating Rows() result changed the table")
	}
}

func TestTable_MarshalJSON(t *testing.T) {
	table := Build([]mining.AssociationRule{rule("B,A", "C", 0.8)})

	data, err := table.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	want := `[{"Basket":["A","B"],"Next_Product":["C"],"Proba":0.8}]`
	if string(data) != want {
		t.Errorf("MarshalJSON() = %s, want %s", data, want)
	}
}

func TestNilTable(t *testing.T) {
	var table *Table
	if table.Len() != 0 || !table.Empty() || len(table.Rows()) != 0 {
		t.Error("nil table should behave as empty")
	}
	if _, ok := table.Lookup(basket.NewItemSet("A")); ok {
		t.Error("Lookup() on nil table found a row")
	}
}
