package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/buyerboard/finance-engine/pkg/advisor"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	path := writeTestConfig(t, `
commissionRules:
  - mediaBuyer: Alice Smith
    rate: 0.15
  - mediaBuyer: Bob
    rate: 0.05
dailyCaps:
  - network: NetA
    offer: O1
    cap: "1500"
  - network: NetA
    offer: O2
    cap: Uncapped
projection:
  horizonDays: 45
  dailyMediaSpend: 2500
logging:
  level: debug
  format: console
output:
  format: csv
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if len(conf.CommissionRules) != 2 {
		t.Errorf("expected 2 commission rules, got %d", len(conf.CommissionRules))
	}
	if conf.Projection.HorizonDays != 45 || conf.Projection.DailyMediaSpend != 2500 {
		t.Errorf("projection config = %+v", conf.Projection)
	}
	if conf.Logging.Level != "debug" || conf.Output.Format != "csv" {
		t.Errorf("ambient config = %+v / %+v", conf.Logging, conf.Output)
	}

	table := conf.CommissionTable()
	if got := table.Rate("alice smith"); got != 0.15 {
		t.Errorf("commission rate = %v, expected 0.15", got)
	}
	if got := table.Rate("nobody"); got != 0.10 {
		t.Errorf("default rate = %v, expected 0.10", got)
	}

	caps := conf.CapsTable()
	if cap, ok := caps.Cap("NetA", "O1"); !ok || cap != 1500 {
		t.Errorf("cap lookup = (%v, %v), expected (1500, true)", cap, ok)
	}
	if _, ok := caps.Cap("NetA", "O2"); ok {
		t.Errorf("uncapped rule should not clamp")
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestHorizonDaysDefault(t *testing.T) {
	conf := &Configuration{}
	if got := conf.HorizonDays(); got != 30 {
		t.Errorf("HorizonDays() = %d, expected default 30", got)
	}
	conf.Projection.HorizonDays = 60
	if got := conf.HorizonDays(); got != 60 {
		t.Errorf("HorizonDays() = %d, expected 60", got)
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	conf := &Configuration{
		CommissionRules: []CommissionRule{
			{MediaBuyer: "Alice", Rate: 0.15},
			{MediaBuyer: "alice ", Rate: 1.5},
			{MediaBuyer: "", Rate: 0.1},
		},
		DailyCaps: []advisor.CapRule{
			{Network: "", Offer: "O1", Cap: "100"},
		},
		Projection: ProjectionConfig{HorizonDays: -1},
	}

	// Expect: duplicate buyer, out-of-range rate, blank buyer, blank cap
	// network, negative horizon.
	warnings := conf.ValidateConfiguration()
	if len(warnings) != 5 {
		t.Errorf("expected 5 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestValidateConfigurationClean(t *testing.T) {
	conf := &Configuration{
		CommissionRules: []CommissionRule{{MediaBuyer: "Alice", Rate: 0.12}},
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
