package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ptre-signal-engine/internal/service"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(signalService *service.SignalService) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/tickers", func(c tele.Context) error {
		return c.Send("Supported tickers: " + strings.Join(signalService.Tickers(), ", "))
	})

	b.Handle("/signal", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /signal AAPL\nSupported: %s", strings.Join(signalService.Tickers(), ", ")))
		}
		ticker := strings.ToUpper(args[0])
		report, err := signalService.GetSignal(context.Background(), ticker)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching signal for %s: %v", ticker, err))
		}
		return c.Send(formatSignalMessage(report))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func formatSignalMessage(report *service.SignalReport) string {
	vol := "n/a"
	if report.Risk.VolatilityValue != nil {
		vol = fmt.Sprintf("%.2f%%", *report.Risk.VolatilityValue*100)
	}
	return fmt.Sprintf(
		"%s: %s (%.2f%%)\nTrend: %s %.3f\nMomentum: %s %.3f (%dd)\nAgreement: %v\nVolatility: %s (%s)",
		report.Ticker, report.FinalSignal, report.FinalConfidence,
		report.Trend.Direction, report.Trend.Confidence,
		report.Momentum.Direction, report.Momentum.Confidence, report.Momentum.HorizonDays,
		report.Agreement,
		report.Risk.Volatility, vol,
	)
}
