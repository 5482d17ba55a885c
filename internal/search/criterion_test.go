package search

import (
	"errors"
	"testing"
	"time"
)

func TestExpressionCodes(t *testing.T) {
	for expr, code := range exprCodes {
		got, err := ParseExpression(code)
		if err != nil {
			t.Fatalf("ParseExpression(%q): %v", code, err)
		}
		if got != expr {
			t.Errorf("ParseExpression(%q) = %v, want %v", code, got, expr)
		}
	}

	if _, err := ParseExpression("like"); !errors.Is(err, ErrBadFilterValue) {
		t.Errorf("unknown code: got %v, want ErrBadFilterValue", err)
	}
}

func TestOperandTokens(t *testing.T) {
	tests := []struct {
		name string
		op   Operand
		want string
	}{
		{"whole number", NumberOperand(3), "3"},
		{"fraction", NumberOperand(1.5), "1.5"},
		{"date", DateOperand(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)), "2026-03-14"},
		{"text", TextOperand("login page"), "login page"},
		{"ref", RefOperand(42, "alice"), "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Token(); got != tt.want {
				t.Errorf("Token() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCriterionActive(t *testing.T) {
	tests := []struct {
		name string
		c    Criterion
		want bool
	}{
		{"zero value", Criterion{}, false},
		{"set with members", Criterion{Expr: ExprIn, Values: []Operand{RefOperand(1, "")}}, true},
		{"set without members", Criterion{Expr: ExprIn}, false},
		{"scalar with value", Criterion{Expr: ExprEquals, Value: NumberOperand(0)}, true},
		{"blank text", Criterion{Expr: ExprContains, Value: TextOperand("   ")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.IsActive(); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCriterionFormMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("List on scalar criterion did not panic")
		}
	}()
	c := Criterion{Expr: ExprEquals, Value: NumberOperand(1)}
	c.List()
}
