package bot

import (
	"strings"
	"testing"

	"ptre-signal-engine/internal/service"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	StartTelegramBot(nil)
}

func TestFormatSignalMessage(t *testing.T) {
	vol := 0.2345
	report := &service.SignalReport{
		Ticker:          "AAPL",
		FinalSignal:     "Bullish",
		FinalConfidence: 72.5,
		Agreement:       true,
		Trend:           service.ComponentReport{Direction: "Bullish", Confidence: 0.81},
		Momentum:        service.ComponentReport{Direction: "Bullish", Confidence: 0.64, HorizonDays: 7},
		Risk:            service.RiskReport{Volatility: "Moderate", VolatilityValue: &vol},
	}

	msg := formatSignalMessage(report)
	for _, want := range []string{"AAPL: Bullish (72.50%)", "Trend: Bullish 0.810", "Momentum: Bullish 0.640 (7d)", "Agreement: true", "Volatility: Moderate (23.45%)"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatSignalMessageNoVolatility(t *testing.T) {
	report := &service.SignalReport{
		Ticker:      "MSFT",
		FinalSignal: "Neutral",
		Risk:        service.RiskReport{Volatility: "Unknown"},
	}
	if msg := formatSignalMessage(report); !strings.Contains(msg, "Volatility: Unknown (n/a)") {
		t.Fatalf("expected n/a volatility, got:\n%s", msg)
	}
}
