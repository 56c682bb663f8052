package main

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/autom8ter/flatdb"
	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/util"
)

const envPrefix = "FLATDB"

func rootCmd() *cobra.Command {
	v := viper.New()
	var configFile string
	cmd := &cobra.Command{
		Use:           "flatdb",
		Short:         "query flat, append-only json collections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configFile == "" {
				return nil
			}
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return errors.Wrap(err, errors.Validation, "failed to read config file: %s", configFile)
			}
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "path to a config file (yaml or json)")
	flags.String("provider", "file", "storage provider (memory, file, badger, redis, s3, minio)")
	flags.String("params", `{"root_dir": "."}`, "storage provider params (json)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("skip-malformed", false, "skip stored records that are not valid json objects")
	flags.Bool("lenient-operators", false, "treat unknown query operators as conditions that never match")
	flags.StringSlice("full-text-fields", nil, "fields searched by $text clauses of collections missing from the config")
	for key, flag := range map[string]string{
		"provider":          "provider",
		"params":            "params",
		"log_level":         "log-level",
		"skip_malformed":    "skip-malformed",
		"lenient_operators": "lenient-operators",
		"full_text_fields":  "full-text-fields",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.AddCommand(findCmd(v), serveCmd(v))
	return cmd
}

// loadConfig builds the database config from the config file, flags and FLATDB_* environment variables.
// Collections that are not configured are added with the --full-text-fields flag.
func loadConfig(v *viper.Viper, collections ...string) (flatdb.Config, error) {
	params, err := loadParams(v)
	if err != nil {
		return flatdb.Config{}, err
	}
	cfg := flatdb.Config{
		Provider:         v.GetString("provider"),
		Params:           params,
		LogLevel:         v.GetString("log_level"),
		SkipMalformed:    v.GetBool("skip_malformed"),
		LenientOperators: v.GetBool("lenient_operators"),
	}
	if v.IsSet("collections") {
		if err := util.Decode(v.Get("collections"), &cfg.Collections); err != nil {
			return flatdb.Config{}, errors.Wrap(err, errors.Validation, "invalid collections config")
		}
	}
	for _, name := range collections {
		configured := lo.ContainsBy(cfg.Collections, func(c flatdb.CollectionConfig) bool {
			return c.Name == name
		})
		if !configured {
			cfg.Collections = append(cfg.Collections, flatdb.CollectionConfig{
				Name:           name,
				FullTextFields: v.GetStringSlice("full_text_fields"),
			})
		}
	}
	return cfg, cfg.Validate()
}

func loadParams(v *viper.Viper) (map[string]any, error) {
	switch params := v.Get("params").(type) {
	case map[string]any:
		return params, nil
	case string:
		if params == "" {
			return map[string]any{}, nil
		}
		bits, err := util.YAMLToJSON([]byte(params))
		if err != nil {
			return nil, errors.Wrap(err, errors.Validation, "invalid provider params")
		}
		doc, err := flatdb.NewDocumentFromBytes(bits)
		if err != nil {
			return nil, errors.Wrap(err, errors.Validation, "invalid provider params")
		}
		return doc.Value(), nil
	case nil:
		return map[string]any{}, nil
	default:
		return nil, errors.New(errors.Validation, "invalid provider params: %v", params)
	}
}
