package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"ibms/internal/backend"
	"ibms/internal/cli"
	"ibms/internal/config"
	"ibms/internal/export"
	"ibms/internal/rollup"
	"ibms/internal/services"
)

const width = 96

func initLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return logger, func() { _ = logger.Sync() }
}

func printHeader(title string) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", width))
}

func boxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

func printOverall(o rollup.OverallStats, mode rollup.Mode) {
	printHeader("OVERALL")
	fmt.Printf("Total capital     : %s\n", rollup.Format(o.TotalCapital, mode))
	fmt.Printf("Investors         : %d\n", o.TotalInvestors)
	fmt.Printf("Active deals      : %d\n", o.TotalActiveDeals)
	fmt.Printf("Average ticket    : %s\n", rollup.Format(o.AverageTicket, mode))
	fmt.Printf("Monthly liability : %s (investor %s, marketer %s, sub-marketer %s)\n",
		rollup.Format(o.Liability.TotalMonthly, mode),
		rollup.Format(o.Liability.Investor, mode),
		rollup.Format(o.Liability.Marketer, mode),
		rollup.Format(o.Liability.SubMarketer, mode))
	fmt.Printf("Projected annual  : %s\n", rollup.Format(o.Liability.ProjectedAnnual, mode))
}

func printMarketers(rows []rollup.PortfolioRollup, mode rollup.Mode) {
	printHeader(fmt.Sprintf("MARKETERS (%d)", len(rows)))
	for i, r := range rows {
		fmt.Printf("%s%-28s raised %16s  investors %3d  deals %3d  commission %12s/mo @ %s%%\n",
			boxPrefix(i == len(rows)-1),
			r.Name,
			rollup.Format(r.TotalRaised, mode),
			r.InvestorCount,
			r.ActiveDeals,
			rollup.Format(r.MonthlyCommission, mode),
			r.EffectiveCommissionRate.StringFixed(2))
	}
}

func printSubMarketors(rows []rollup.SubMarketorRollup, mode rollup.Mode, deals bool) {
	printHeader(fmt.Sprintf("SUB-MARKETORS (%d)", len(rows)))
	for i, r := range rows {
		last := i == len(rows)-1
		fmt.Printf("%s%-28s raised %16s  investors %3d  deals %3d  commission %12s/mo\n",
			boxPrefix(last),
			r.PortfolioName+" / "+r.Name,
			rollup.Format(r.TotalRaised, mode),
			r.InvestorCount,
			r.ActiveDeals,
			rollup.Format(r.MonthlyCommission, mode))
		if !deals {
			continue
		}
		indent := "│  "
		if last {
			indent = "   "
		}
		for j, d := range r.Deals {
			fmt.Printf("%s%s%-24s %14s  %s → %s  %s%%\n",
				indent,
				boxPrefix(j == len(r.Deals)-1),
				d.InvestorName,
				rollup.Format(d.Amount, mode),
				d.StartDate,
				d.EndDate,
				d.CommissionPercent.String())
		}
	}
}

func writeXLSX(path string, rep services.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := initLogger()
	defer loggerCleanup()

	modeFlag := flag.String("mode", "full", "Currency format: full, threshold or compact")
	dealsFlag := flag.Bool("deals", false, "List the deals behind each sub-marketor")
	xlsxFlag := flag.String("xlsx", "", "Also write the report workbook to this path (optional)")
	flag.Parse()

	mode := rollup.ParseMode(*modeFlag)

	// Only the storage settings matter here, so the server's auth and
	// export requirements are not validated.
	cli.LoadEnvFile()
	cfg := config.Load()
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Fatal("Invalid backend configuration", zap.Error(err))
	}
	// A persistent store is reported as is. The memory backend only ever
	// holds the seed book.
	bcfg.SkipSeed = bcfg.Type == backend.SQLiteBackend
	bcfg.AMQPURL = ""

	logger.Info("Opening store",
		zap.String("backend", bcfg.Type.String()),
		zap.String("path", bcfg.SQLiteDBPath))
	res, err := backend.NewFactory(nil).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}()

	reports := services.NewReportService(res.Store, nil, services.ReportOptions{WindowDays: cfg.TrailingWindow})
	rep, err := reports.Full(ctx)
	if err != nil {
		logger.Error("Failed to build report", zap.Error(err))
		return
	}

	printOverall(rep.Overall, mode)
	printMarketers(rep.Marketers, mode)
	printSubMarketors(rep.SubMarketors, mode, *dealsFlag)

	if *xlsxFlag != "" {
		if err := writeXLSX(*xlsxFlag, rep); err != nil {
			logger.Error("Failed to write workbook", zap.String("path", *xlsxFlag), zap.Error(err))
			return
		}
		logger.Info("Workbook written", zap.String("path", *xlsxFlag))
	}

	logger.Info("Report completed",
		zap.String("mode", string(mode)),
		zap.Int("investments", len(rep.Investments)),
		zap.Int("marketers", len(rep.Marketers)),
		zap.Int("sub_marketors", len(rep.SubMarketors)),
		zap.String("total_capital", rep.Overall.TotalCapital.String()))
}
