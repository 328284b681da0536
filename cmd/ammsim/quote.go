package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	poolID, side, err := poolArgs(cmd)
	if err != nil {
		return err
	}
	amountIn, _ := cmd.Flags().GetFloat64("amount-in")
	amountOut, _ := cmd.Flags().GetFloat64("amount-out")
	if amountIn > 0 && amountOut > 0 {
		return fmt.Errorf("amount-in and amount-out are mutually exclusive")
	}

	eng, _, err := loadEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	// An output target inverts the quote: report the input required.
	if amountOut > 0 {
		required, err := eng.RequiredInput(poolID, amountOut, side)
		if err != nil {
			return err
		}
		return printJSON(map[string]float64{
			"amount_out":  amountOut,
			"required_in": required,
		})
	}

	quote, err := eng.QuoteSwap(poolID, amountIn, side)
	if err != nil {
		return err
	}
	return printJSON(quote)
}
