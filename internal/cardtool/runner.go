package cardtool

import (
	"context"
	"io"

	"github.com/okian/racecard/internal/adapters/source"
	"github.com/okian/racecard/internal/config"
	"github.com/okian/racecard/internal/domain/model"
	"github.com/okian/racecard/internal/domain/racecard"
	"github.com/okian/racecard/internal/domain/scoring"
	"github.com/okian/racecard/internal/domain/types"
	"github.com/okian/racecard/pkg/logger"
)

// Run ranks the card in cfg.File and renders the result to w.
func Run(ctx context.Context, cfg *Config, w io.Writer) error {
	if cfg.File == "" {
		return ErrMissingFile
	}
	condition, err := model.ParseTrackCondition(cfg.Condition)
	if err != nil {
		return err
	}

	text, err := source.ExtractFile(cfg.File)
	if err != nil {
		return err
	}
	logger.Get().Debug(ctx, "card extracted", logger.String("file", cfg.File), logger.Int("bytes", len(text)))

	var entries []types.Entry
	if cfg.URL != "" {
		card, err := NewHTTPClient(cfg.URL, cfg.Timeout).Rank(ctx, text, condition.Token())
		if err != nil {
			return err
		}
		entries = card.Horses
	} else {
		entries, err = rankLocal(ctx, cfg.ConfigPath, text, condition)
		if err != nil {
			return err
		}
	}

	if len(entries) == 0 {
		return ErrNoData
	}
	if cfg.Top > 0 && cfg.Top < len(entries) {
		entries = entries[:cfg.Top]
	}
	logger.Get().Debug(ctx, "card ranked",
		logger.String("condition", condition.Token()),
		logger.Int("runners", len(entries)))

	return Render(w, entries, cfg.JSON)
}

func rankLocal(ctx context.Context, configPath, text string, condition model.TrackCondition) ([]types.Entry, error) {
	var (
		settings *config.Config
		err      error
	)
	if configPath != "" {
		settings, err = config.LoadFile(ctx, configPath)
	} else {
		settings, err = config.Load(ctx)
	}
	if err != nil {
		return nil, err
	}

	horses := racecard.NewParser(settings.ParserOptions()...).Parse(text)
	engine := scoring.NewEngine(scoring.WithCoefficients(settings.Coefficients()))
	return types.Entries(engine.Rank(horses, condition)), nil
}
