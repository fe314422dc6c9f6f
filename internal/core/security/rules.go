package security

import (
	"context"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"

	"facture/internal/core/apperror"
	appctx "facture/internal/core/context"
)

// CommitRule is an admin-defined guard evaluated before a document is
// committed. The expression must evaluate to bool; false blocks the
// commit with Message.
//
// Example: `documentType == "Invoice" && totalAmount > 10000.0
// ? "admin" in roles : true`
type CommitRule struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Message    string `json:"message"`
}

// CommitInput is the document snapshot the rules are evaluated against.
type CommitInput struct {
	DocumentType string
	Number       string
	Currency     string
	TotalAmount  float64
	Date         time.Time
}

type compiledRule struct {
	rule    CommitRule
	program cel.Program
}

// RuleGuard evaluates CEL commit rules. Rules are compiled once at
// construction; evaluation is cheap and side-effect free.
type RuleGuard struct {
	rules []compiledRule
}

// NewRuleGuard compiles the given rules. A rule that does not compile
// or does not produce bool is rejected up front, not at commit time.
func NewRuleGuard(rules []CommitRule) (*RuleGuard, error) {
	env, err := cel.NewEnv(
		cel.Variable("documentType", cel.StringType),
		cel.Variable("number", cel.StringType),
		cel.Variable("currency", cel.StringType),
		cel.Variable("totalAmount", cel.DoubleType),
		cel.Variable("backdated", cel.BoolType),
		cel.Variable("roles", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		ast, iss := env.Compile(r.Expression)
		if iss.Err() != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, iss.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("rule %q: expression must return bool, got %s", r.Name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %q: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{rule: r, program: prg})
	}

	return &RuleGuard{rules: compiled}, nil
}

// Check evaluates all rules against the input. The first failing rule
// blocks the commit.
func (g *RuleGuard) Check(ctx context.Context, input CommitInput) error {
	if len(g.rules) == 0 {
		return nil
	}

	roles := []string{}
	if user := appctx.GetUser(ctx); user != nil {
		roles = user.Roles
	}

	vars := map[string]any{
		"documentType": input.DocumentType,
		"number":       input.Number,
		"currency":     input.Currency,
		"totalAmount":  input.TotalAmount,
		"backdated":    input.Date.Before(time.Now().UTC().Truncate(24 * time.Hour)),
		"roles":        roles,
	}

	for _, cr := range g.rules {
		out, _, err := cr.program.Eval(vars)
		if err != nil {
			return apperror.NewInternal(err).
				WithDetail("rule", cr.rule.Name)
		}
		allowed, ok := out.Value().(bool)
		if !ok || !allowed {
			msg := cr.rule.Message
			if msg == "" {
				msg = "Commit blocked by rule " + cr.rule.Name
			}
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, msg).
				WithDetail("rule", cr.rule.Name)
		}
	}

	return nil
}
