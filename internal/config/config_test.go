package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/okian/racecard/internal/config"
	"github.com/okian/racecard/internal/domain/racecard"
	"github.com/okian/racecard/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.StoreCapacity, convey.ShouldEqual, 10_000)
			convey.So(cfg.VerdictMarker, convey.ShouldEqual, "ATR VERDICT")
			convey.So(cfg.WeightSuffix, convey.ShouldEqual, "kg")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the coefficients match the scoring defaults", func() {
			convey.So(cfg.Coefficients(), convey.ShouldResemble, scoring.DefaultCoefficients())
		})
	})
}

func TestConfig_ParserOptions(t *testing.T) {
	convey.Convey("Given a config with custom parser settings", t, func() {
		cfg := config.New(context.Background())
		cfg.VerdictMarker = " TIPS , ,OUR VIEW"
		cfg.WeightSuffix = "lb"
		p := racecard.NewParser(cfg.ParserOptions()...)

		convey.Convey("Then every listed marker skips its line", func() {
			horses := p.Parse("1 Ace 130lb\nTIPS: Ace\nGd1\nOUR VIEW Ace wins\nAge 6")
			convey.So(horses, convey.ShouldHaveLength, 1)
			convey.So(horses[0].Name, convey.ShouldEqual, "Ace")
			convey.So(horses[0].CurrentWeight, convey.ShouldEqual, 130.0)
			convey.So(horses[0].Age, convey.ShouldEqual, 6)
		})

		convey.Convey("Then a blank marker list keeps the default", func() {
			cfg.VerdictMarker = " , "
			horses := racecard.NewParser(cfg.ParserOptions()...).Parse("1 Ace 130lb\nATR VERDICT Ace\nAge 6")
			convey.So(horses, convey.ShouldHaveLength, 1)
			convey.So(horses[0].Age, convey.ShouldEqual, 6)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with a single bad setting", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "  " },
			"zero body limit":   func(c *config.Config) { c.MaxBodyBytes = 0 },
			"zero queue":        func(c *config.Config) { c.QueueSize = 0 },
			"zero gain factor":  func(c *config.Config) { c.WeightGainFactor = 0 },
			"unknown format":    func(c *config.Config) { c.LogFormat = "xml" },
			"unknown log level": func(c *config.Config) { c.LogLevel = "chatty" },
		}

		for name, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+name+" is rejected as invalid config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
