// eval.go — one-shot evaluation: xpr eval 'user.age >= 18'.
//
// Bindings come from three places, later wins:
//  1. [vars] in xpr.toml,
//  2. --bindings file.yaml (top-level `root:` becomes the root object,
//     `vars:` become #variables),
//  3. repeated --var name=value flags (values parsed as xpr literals).
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/daios-ai/xpr"
)

var (
	bindingsFile string
	varFlags     []string
	asType       string
)

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		cfg, err := FindAndLoad(cfgFile)
		if err != nil {
			return err
		}
		ctx, err := buildContext(cfg)
		if err != nil {
			return err
		}

		expr, err := xpr.Parse(src)
		if err != nil {
			return xpr.WrapErrorWithSource(err, src)
		}

		out, err := evalTyped(expr, ctx, asType)
		if err != nil {
			return xpr.WrapErrorWithSource(err, src)
		}
		fmt.Println(formatResult(out))
		return nil
	},
}

func init() {
	evalCmd.Flags().StringVarP(&bindingsFile, "bindings", "b", "", "YAML file with root: and vars:")
	evalCmd.Flags().StringArrayVar(&varFlags, "var", nil, "bind a #variable, name=value (value is an xpr literal)")
	evalCmd.Flags().StringVarP(&asType, "type", "t", "", "coerce the result: int, num, str or bool")
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(astCmd)
}

// bindingsDoc is the shape of a --bindings YAML file.
type bindingsDoc struct {
	Root any            `yaml:"root"`
	Vars map[string]any `yaml:"vars"`
}

func buildContext(cfg *Config) (*xpr.Context, error) {
	ctx := xpr.NewContext()
	for k, v := range cfg.Vars {
		ctx.SetVariable(k, normalize(v))
	}
	if bindingsFile != "" {
		raw, err := os.ReadFile(bindingsFile)
		if err != nil {
			return nil, err
		}
		var doc bindingsDoc
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", bindingsFile, err)
		}
		ctx.SetRoot(normalize(doc.Root))
		for k, v := range doc.Vars {
			ctx.SetVariable(k, normalize(v))
		}
	}
	for _, kv := range varFlags {
		name, lit, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--var wants name=value, got %q", kv)
		}
		v, err := xpr.Parse(lit)
		if err != nil {
			return nil, fmt.Errorf("--var %s: %w", name, err)
		}
		val, err := v.Eval(nil)
		if err != nil {
			return nil, fmt.Errorf("--var %s: %w", name, err)
		}
		ctx.SetVariable(name, val)
	}
	return ctx, nil
}

// normalize folds YAML/TOML scalar types into the xpr value model (ints to
// int64, map keys to map[string]any).
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprintf("%v", k)] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}

func evalTyped(expr *xpr.Expression, ctx *xpr.Context, as string) (any, error) {
	switch as {
	case "":
		return expr.Eval(ctx)
	case "int":
		return xpr.EvalAs[int64](expr, ctx)
	case "num":
		return xpr.EvalAs[float64](expr, ctx)
	case "str":
		return xpr.EvalAs[string](expr, ctx)
	case "bool":
		return xpr.EvalAs[bool](expr, ctx)
	}
	return nil, fmt.Errorf("unknown --type %q (want int, num, str or bool)", as)
}

func formatResult(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

var astCmd = &cobra.Command{
	Use:   "ast <expression>",
	Short: "Print the parsed tree of an expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expr, err := xpr.Parse(args[0])
		if err != nil {
			return xpr.WrapErrorWithSource(err, args[0])
		}
		fmt.Print(xpr.DumpAST(expr.AST()))
		return nil
	},
}
