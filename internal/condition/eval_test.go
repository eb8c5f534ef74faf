package condition

import (
	"reflect"
	"testing"
)

// row implements EvalContext over a flat map.
type row map[string]interface{}

func (r row) Resolve(path []string) (interface{}, bool) {
	if len(path) != 1 {
		return nil, false
	}
	v, ok := r[path[0]]
	return v, ok
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name    string
		expr    string
		ctx     row
		want    bool
		wantErr bool
	}{
		{name: "numeric gt", expr: "score > 0.5", ctx: row{"score": 0.75}, want: true},
		{name: "numeric lte", expr: "depth <= 2", ctx: row{"depth": float64(3)}, want: false},
		{name: "negative literal", expr: "valence >= -0.5", ctx: row{"valence": -0.2}, want: true},
		{name: "string eq", expr: `subreddit == "AskReddit"`, ctx: row{"subreddit": "AskReddit"}, want: true},
		{name: "single quotes", expr: `subreddit != 'news'`, ctx: row{"subreddit": "news"}, want: false},
		{name: "bool literal", expr: "example_very_unclear == false", ctx: row{"example_very_unclear": false}, want: true},
		{name: "bool vs string", expr: "flag == true", ctx: row{"flag": "yes"}, want: false},
		{name: "indicator eq", expr: "joy == 1", ctx: row{"joy": float64(1)}, want: true},
		{name: "AND", expr: `joy == 1 AND anger == 0`, ctx: row{"joy": float64(1), "anger": float64(1)}, want: false},
		{name: "OR", expr: `joy == 1 OR anger == 1`, ctx: row{"joy": float64(0), "anger": float64(1)}, want: true},
		{name: "NOT", expr: `NOT joy == 1`, ctx: row{"joy": float64(0)}, want: true},
		{name: "parens", expr: `(joy == 1 OR love == 1) AND NOT neutral == 1`, ctx: row{"joy": float64(0), "love": float64(1), "neutral": float64(0)}, want: true},
		{name: "lowercase keywords", expr: `joy == 1 or love == 1`, ctx: row{"joy": float64(0), "love": float64(1)}, want: true},
		{name: "contains", expr: `text contains "thanks"`, ctx: row{"text": "thanks a lot"}, want: true},
		{name: "matches", expr: `author matches "^bot_[0-9]+$"`, ctx: row{"author": "bot_42"}, want: true},
		{name: "short-circuit skips missing field", expr: `joy == 0 AND missing == 1`, ctx: row{"joy": float64(1)}, want: false},
		{name: "missing field", expr: "missing > 1", ctx: row{}, wantErr: true},
		{name: "ordering on string", expr: "text > 1", ctx: row{"text": "abc"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ast, err := Parse(tc.expr)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tc.expr, err)
			}
			got, err := Evaluate(ast, tc.ctx)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil (result=%v)", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tc.expr, got, tc.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []string{
		`"unterminated`,
		`joy 1`,
		``,
		`joy = 1`,
		`(joy == 1`,
		`joy == 1 extra`,
		`author matches "[unclosed"`,
		`joy == 1 AND`,
		`joy # 1`,
	}
	for _, expr := range cases {
		t.Run(expr, func(t *testing.T) {
			if _, err := Parse(expr); err == nil {
				t.Errorf("expected parse error for %q, got nil", expr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	ast, err := Parse(`subreddit == "x" AND (joy > 0 OR NOT author.name == "y")`)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"subreddit"}, {"joy"}, {"author", "name"}}
	if got := Fields(ast); !reflect.DeepEqual(got, want) {
		t.Errorf("Fields = %v, want %v", got, want)
	}
}
