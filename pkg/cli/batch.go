package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mchmarny/cardiocheck/pkg/patient"
	"github.com/mchmarny/cardiocheck/pkg/predict"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const batchConcurrencyDefault = 4

var (
	batchFileFlag = &cli.StringFlag{
		Name:     "file",
		Usage:    "YAML or JSON file with a list of patient inputs",
		Required: true,
	}

	concurrencyFlag = &cli.IntFlag{
		Name:  "concurrency",
		Usage: "Number of inputs evaluated in parallel",
		Value: batchConcurrencyDefault,
	}

	batchCmd = &cli.Command{
		Name:    "batch",
		Aliases: []string{"b"},
		Usage:   "Predict heart disease for a list of patients",
		Action:  cmdBatch,
		Flags: []cli.Flag{
			batchFileFlag,
			concurrencyFlag,
		},
	}
)

// BatchItem is the outcome for one input. Exactly one of Result or Error is set.
type BatchItem struct {
	Index  int             `json:"index" yaml:"index"`
	Result *predict.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string          `json:"error,omitempty" yaml:"error,omitempty"`
}

func cmdBatch(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	var inputs []*patient.Record
	if err := readFile(cmd.String(batchFileFlag.Name), &inputs); err != nil {
		return err
	}

	p, err := loadPredictor(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	items, err := runBatch(ctx, p, inputs, int(cmd.Int(concurrencyFlag.Name)))
	if err != nil {
		return err
	}

	return encode(writer(cmd), cfg.Format, items)
}

// runBatch evaluates inputs concurrently. Per-input failures are reported in
// the item; only cancellation aborts the batch. Items keep input order.
func runBatch(ctx context.Context, p *predict.Predictor, inputs []*patient.Record, concurrency int) ([]*BatchItem, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	items := make([]*BatchItem, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, rec := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i] = evalItem(ctx, p, i, rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch aborted: %w", err)
	}

	slog.Debug("batch complete", "items", len(items))
	return items, nil
}

func evalItem(ctx context.Context, p *predict.Predictor, i int, rec *patient.Record) *BatchItem {
	item := &BatchItem{Index: i}

	in, err := rec.Input()
	if err == nil {
		in, err = in.Normalize()
	}
	if err == nil {
		item.Result, err = p.Predict(ctx, in)
	}
	if err != nil {
		item.Error = err.Error()
	}
	return item
}
