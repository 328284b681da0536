package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emirkutlugun77/amm-pool-sim/internal/metrics"
)

func runMetrics(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	symbol, _ := cmd.Flags().GetString("symbol")
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	eng, _, err := loadEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	snap := eng.Snapshot()
	coin, ok := snap.FindCoinBySymbol(symbol)
	if !ok {
		return fmt.Errorf("coin %q not found", symbol)
	}

	m := metrics.Calculate(coin, snap.Pools, snap.Transactions, time.Now().UnixMilli())

	fmt.Printf("%s (%s)\n", coin.Name, coin.Symbol)
	fmt.Printf("  price:        %s\n", metrics.FormatPrice(m.Price))
	fmt.Printf("  market cap:   %s\n", metrics.FormatAmount(m.MarketCap))
	fmt.Printf("  fdv:          %s\n", metrics.FormatAmount(m.FDV))
	fmt.Printf("  volume 24h:   %s\n", metrics.FormatAmount(m.Volume24h))
	fmt.Printf("  change:       %.2f%%\n", m.PriceChange24h)
	fmt.Printf("  circulating:  %s\n", metrics.FormatAmount(m.CirculatingSupply))
	return nil
}
