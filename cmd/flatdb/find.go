package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/autom8ter/flatdb"
	"github.com/autom8ter/flatdb/errors"
)

func findCmd(v *viper.Viper) *cobra.Command {
	var (
		query      string
		sort       string
		projection string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "find [collection]",
		Short: "find the records of a collection that match a query",
		Example: `flatdb find user --query '{"age": {"$gt": 21}}' --sort '{"age": -1}' --projection '{"id": 1, "name": 1}'
flatdb find user --query '{"$text": "tom"}' --full-text-fields name --format '{{ .name | upper }} ({{ .age }})'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := loadConfig(v, args[0])
			if err != nil {
				return err
			}
			req, err := parseFindFlags(args[0], query, sort, projection, cfg.LenientOperators)
			if err != nil {
				return err
			}
			db, err := flatdb.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(ctx)
			results, err := db.Find(ctx, req.Collection, req.Query, req.Options)
			if err != nil {
				return err
			}
			return printDocuments(cmd.OutOrStdout(), results, format)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "{}", "query object (json or yaml)")
	cmd.Flags().StringVarP(&sort, "sort", "s", "", "sort object (json or yaml) ex: {\"age\": -1}")
	cmd.Flags().StringVarP(&projection, "projection", "p", "", "projection object (json or yaml) ex: {\"id\": 1}")
	cmd.Flags().StringVarP(&format, "format", "f", "", "go template (with sprig functions) executed against each record")
	return cmd
}

func parseFindFlags(collection, query, sort, projection string, lenient bool) (flatdb.FindRequest, error) {
	req := flatdb.FindRequest{Collection: collection}
	var err error
	if req.Query, err = flatdb.ParseQuery([]byte(query), flatdb.WithLenientOperators(lenient)); err != nil {
		return req, err
	}
	if sort != "" || projection != "" {
		req.Options = &flatdb.FindOptions{}
	}
	if sort != "" {
		if req.Options.Sort, err = flatdb.ParseSortSpec([]byte(sort)); err != nil {
			return req, err
		}
	}
	if projection != "" {
		if req.Options.Projection, err = flatdb.ParseProjectionSpec([]byte(projection)); err != nil {
			return req, err
		}
	}
	return req, nil
}

// printDocuments writes one line per document: the json document or the executed format template
func printDocuments(w io.Writer, documents flatdb.Documents, format string) error {
	if w == nil {
		w = os.Stdout
	}
	var tmpl *template.Template
	if format != "" {
		var err error
		tmpl, err = template.New("format").Funcs(sprig.TxtFuncMap()).Parse(format)
		if err != nil {
			return errors.Wrap(err, errors.Validation, "invalid format template")
		}
	}
	for _, doc := range documents {
		if tmpl == nil {
			if _, err := fmt.Fprintln(w, doc.String()); err != nil {
				return errors.Wrap(err, errors.Internal, "failed to write record")
			}
			continue
		}
		if err := tmpl.Execute(w, doc.Value()); err != nil {
			return errors.Wrap(err, errors.Internal, "failed to execute format template")
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return errors.Wrap(err, errors.Internal, "failed to write record")
		}
	}
	return nil
}
