// Package filter parses AIP-160 filter expressions over finished-game
// history and renders them as SQL or evaluates them in memory.
package filter

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/louisbranch/jinrou/internal/services/game/domain/lifecycle"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindTimestamp
	kindFlag
)

type field struct {
	column string
	kind   fieldKind
}

// historyFields maps filter identifiers to history columns.
var historyFields = map[string]field{
	"role":         {column: "role", kind: kindString},
	"winner":       {column: "winner", kind: kindString},
	"player_count": {column: "player_count", kind: kindInt},
	"finished_at":  {column: "finished_at", kind: kindTimestamp},
	"won":          {column: "won", kind: kindFlag},
	"aborted":      {column: "aborted", kind: kindFlag},
}

// HistoryDeclarations returns the field declarations for history filtering.
func HistoryDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("role", filtering.TypeString),
		filtering.DeclareIdent("winner", filtering.TypeString),
		filtering.DeclareIdent("player_count", filtering.TypeInt),
		filtering.DeclareIdent("finished_at", filtering.TypeTimestamp),
		filtering.DeclareIdent("won", filtering.TypeBool),
		filtering.DeclareIdent("aborted", filtering.TypeBool),
	)
}

// SQLCondition represents a SQL WHERE clause fragment with parameters.
// Timestamp parameters are time.Time values; stores convert them to their
// column encoding.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "role = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Condition is a parsed filter. The zero Condition matches everything.
type Condition struct {
	op       string
	operands []Condition
	field    string
	compare  string
	value    any
}

// Empty reports whether c matches everything.
func (c Condition) Empty() bool {
	return c.op == ""
}

// ParseHistoryFilter parses an AIP-160 filter expression over history
// fields. Returns an empty condition for an empty filter string.
//
// Supported: role, winner (strings), player_count (int), finished_at
// (timestamp, compared with RFC 3339 strings or timestamp("...")), and the
// flags won and aborted, used bare or negated with NOT.
func ParseHistoryFilter(filterStr string) (Condition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return Condition{}, nil
	}

	decls, err := HistoryDeclarations()
	if err != nil {
		return Condition{}, fmt.Errorf("create declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return Condition{}, fmt.Errorf("parse filter: %w", err)
	}

	return translateExpr(filter.CheckedExpr.Expr)
}

func translateExpr(e *expr.Expr) (Condition, error) {
	if e == nil {
		return Condition{}, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr)
	case *expr.Expr_IdentExpr:
		return translateFlag(kind.IdentExpr.Name)
	default:
		return Condition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func translateCall(call *expr.Expr_Call) (Condition, error) {
	switch call.Function {
	case filtering.FunctionAnd, filtering.FunctionOr:
		if len(call.Args) < 2 {
			return Condition{}, fmt.Errorf("%s requires 2 arguments", call.Function)
		}
		operands := make([]Condition, 0, len(call.Args))
		for _, arg := range call.Args {
			operand, err := translateExpr(arg)
			if err != nil {
				return Condition{}, err
			}
			operands = append(operands, operand)
		}
		return Condition{op: call.Function, operands: operands}, nil
	case filtering.FunctionNot:
		if len(call.Args) != 1 {
			return Condition{}, fmt.Errorf("NOT requires 1 argument")
		}
		operand, err := translateExpr(call.Args[0])
		if err != nil {
			return Condition{}, err
		}
		return Condition{op: filtering.FunctionNot, operands: []Condition{operand}}, nil
	case filtering.FunctionEquals, filtering.FunctionNotEquals,
		filtering.FunctionLessThan, filtering.FunctionLessEquals,
		filtering.FunctionGreaterThan, filtering.FunctionGreaterEquals:
		return translateComparison(call.Args, call.Function)
	default:
		return Condition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func translateFlag(name string) (Condition, error) {
	f, ok := historyFields[name]
	if !ok {
		return Condition{}, fmt.Errorf("unknown field: %s", name)
	}
	if f.kind != kindFlag {
		return Condition{}, fmt.Errorf("field %s is not a flag", name)
	}
	return Condition{op: "flag", field: name}, nil
}

func translateComparison(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	name, err := extractFieldName(args[0])
	if err != nil {
		return Condition{}, err
	}
	f, ok := historyFields[name]
	if !ok {
		return Condition{}, fmt.Errorf("unknown field: %s", name)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return Condition{}, err
	}
	switch f.kind {
	case kindString:
		if _, ok := value.(string); !ok {
			return Condition{}, fmt.Errorf("field %s needs a string", name)
		}
	case kindInt:
		if _, ok := value.(int64); !ok {
			return Condition{}, fmt.Errorf("field %s needs an integer", name)
		}
	case kindTimestamp:
		if raw, ok := value.(string); ok {
			value, err = parseTimestamp(raw)
			if err != nil {
				return Condition{}, err
			}
		}
		if _, ok := value.(time.Time); !ok {
			return Condition{}, fmt.Errorf("field %s needs a timestamp", name)
		}
	case kindFlag:
		return Condition{}, fmt.Errorf("field %s is a flag; use %s or NOT %s", name, name, name)
	}
	return Condition{op: "compare", field: name, compare: op, value: value}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		switch c := kind.ConstExpr.ConstantKind.(type) {
		case *expr.Constant_StringValue:
			return c.StringValue, nil
		case *expr.Constant_Int64Value:
			return c.Int64Value, nil
		default:
			return nil, fmt.Errorf("unsupported constant type: %T", c)
		}
	case *expr.Expr_CallExpr:
		if kind.CallExpr.Function == filtering.FunctionTimestamp && len(kind.CallExpr.Args) == 1 {
			raw, err := extractValue(kind.CallExpr.Args[0])
			if err != nil {
				return nil, err
			}
			text, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("timestamp argument must be a string")
			}
			return parseTimestamp(text)
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format: %s", value)
	}
	return t.UTC(), nil
}

// SQL renders c as a WHERE clause fragment. An empty condition renders an
// empty clause.
func (c Condition) SQL() SQLCondition {
	switch c.op {
	case "":
		return SQLCondition{}
	case filtering.FunctionAnd, filtering.FunctionOr:
		clauses := make([]string, 0, len(c.operands))
		var params []any
		for _, operand := range c.operands {
			sql := operand.SQL()
			clauses = append(clauses, sql.Clause)
			params = append(params, sql.Params...)
		}
		return SQLCondition{
			Clause: "(" + strings.Join(clauses, " "+c.op+" ") + ")",
			Params: params,
		}
	case filtering.FunctionNot:
		inner := c.operands[0].SQL()
		return SQLCondition{Clause: "NOT (" + inner.Clause + ")", Params: inner.Params}
	case "flag":
		return SQLCondition{Clause: historyFields[c.field].column + " != 0"}
	default:
		return SQLCondition{
			Clause: fmt.Sprintf("%s %s ?", historyFields[c.field].column, c.compare),
			Params: []any{c.value},
		}
	}
}

// Match reports whether record satisfies c.
func (c Condition) Match(record lifecycle.PlayerHistory) bool {
	switch c.op {
	case "":
		return true
	case filtering.FunctionAnd:
		for _, operand := range c.operands {
			if !operand.Match(record) {
				return false
			}
		}
		return true
	case filtering.FunctionOr:
		for _, operand := range c.operands {
			if operand.Match(record) {
				return true
			}
		}
		return false
	case filtering.FunctionNot:
		return !c.operands[0].Match(record)
	case "flag":
		if c.field == "won" {
			return record.Won
		}
		return record.Aborted
	}

	var order int
	switch c.field {
	case "role":
		order = cmp.Compare(string(record.Role), c.value.(string))
	case "winner":
		order = cmp.Compare(string(record.Winner), c.value.(string))
	case "player_count":
		order = cmp.Compare(int64(record.PlayerCount), c.value.(int64))
	case "finished_at":
		order = record.FinishedAt.Compare(c.value.(time.Time))
	}
	switch c.compare {
	case filtering.FunctionEquals:
		return order == 0
	case filtering.FunctionNotEquals:
		return order != 0
	case filtering.FunctionLessThan:
		return order < 0
	case filtering.FunctionLessEquals:
		return order <= 0
	case filtering.FunctionGreaterThan:
		return order > 0
	default:
		return order >= 0
	}
}
