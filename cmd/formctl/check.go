package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HARIPRASAD-2003/form-builder/pkg/formula"
	"github.com/HARIPRASAD-2003/form-builder/pkg/graph"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
)

type checkOptions struct {
	formID string
	values string
}

func newCheckCommand() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Report cycles, evaluation order and derived values of saved forms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.formID, "form", "", "only check the form with this id")
	cmd.Flags().StringVar(&opts.values, "values", "{}", "JSON object of field id to entered value")
	return cmd
}

func runCheck(out io.Writer, path string, opts *checkOptions) error {
	forms, err := readForms(path)
	if err != nil {
		return err
	}

	var values map[string]interface{}
	if err := json.Unmarshal([]byte(opts.values), &values); err != nil {
		return fmt.Errorf("--values must be a JSON object: %w", err)
	}

	engine := formula.NewEngine()
	checked := 0
	for i := range forms {
		form := &forms[i]
		if opts.formID != "" && form.ID != opts.formID {
			continue
		}
		checked++
		reportForm(out, engine, form, values)
	}
	if checked == 0 {
		return fmt.Errorf("no form matched %q", opts.formID)
	}
	return nil
}

// readForms accepts either a form store file (a JSON array) or one form
func readForms(path string) ([]models.Form, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var forms []models.Form
		if err := json.Unmarshal(raw, &forms); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return forms, nil
	}
	var form models.Form
	if err := json.Unmarshal(raw, &form); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return []models.Form{form}, nil
}

func reportForm(out io.Writer, engine *formula.Engine, form *models.Form, values map[string]interface{}) {
	fmt.Fprintf(out, "📋 %s (%s), %d fields\n", form.Name, form.ID, len(form.Fields))

	if cycle := graph.FindCycle(form.Fields); cycle != nil {
		fmt.Fprintf(out, "  🔥 cycle: %s\n", strings.Join(cycle, " -> "))
	} else {
		order, _ := graph.TopologicalOrder(form.Fields)
		fmt.Fprintf(out, "  ✅ no cycles, order: %s\n", strings.Join(order, ", "))
	}

	results := engine.Recompute(form.Fields, values)
	for _, f := range form.Fields {
		if !f.IsDerived {
			continue
		}
		res := results[f.ID]
		editable := formula.ToEditable(f.FormulaText(), f.ParentFields, form.LabelOf)
		if res.Err != nil {
			fmt.Fprintf(out, "  ❌ %s = %s  [%s]  %v\n", f.Label, res.Display(), editable, res.Err)
			continue
		}
		fmt.Fprintf(out, "  • %s = %s  [%s]\n", f.Label, res.Display(), editable)
	}
}
