package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var rateCmd = &cobra.Command{
	Use:   "rate BASE QUOTE",
	Short: "Print the reconciled spot rate for a pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		pair := entity.NewCurrencyPair(args[0], args[1])
		quote, err := a.rates.GetQuote(cmd.Context(), pair)
		if err != nil {
			return fmt.Errorf("rate %s: %w", pair, err)
		}
		return printJSON(cmd.OutOrStdout(), quote)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history BASE QUOTE",
	Short: "Print the summarized history for a pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		pair := entity.NewCurrencyPair(args[0], args[1])
		result, err := a.history.GetHistory(cmd.Context(), pair, days)
		if err != nil {
			return fmt.Errorf("history %s: %w", pair, err)
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}
